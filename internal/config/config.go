package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-AddressBook/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Address Book"
	AppID             = "com.github.tartampluch.go-addressbook"
	KeyringService    = "com.github.tartampluch.go-addressbook"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	BookFileName      = "addressbook.vcf"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for the address book snapshot and logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure data directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEvtSummary      = "event_summary"       // Requires Name
	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (For age 0)
	TKeyBirthdaysHeader = "birthdays_header"
	TKeyBirthdaysNone   = "birthdays_none"
)

// SupportedLanguages defines the list of available output languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18080"
	DefaultLanguage = "en"

	// PhoneDigits is the exact number of decimal digits a phone number must contain.
	PhoneDigits = 10

	// UpcomingWindowDays is the inclusive look-ahead window for birthday reminders.
	UpcomingWindowDays = 7

	UIDSalt       = "go-addressbook-v1-" // Salt for deterministic UID generation
	UIDHashLength = 16
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// DateFormatBirthday is the strict input layout for birthdays (DD.MM.YYYY).
	DateFormatBirthday = "02.01.2006"

	// DateFormatGreeting is the output layout for congratulation dates (YYYY.MM.DD).
	DateFormatGreeting = "2006.01.02"

	// Date layouts used when encoding/decoding vCard BDAY fields.
	DateFormatVCard      = "2006-01-02"
	DateFormatVCardBasic = "20060102"

	// Record rendering.
	FormatRecordRender  = "Contact name: %s, phones: %s"
	PhoneJoinSeparator  = "; "
	PlaceholderNoPhone  = "No phones"
	FormatGreetingEntry = "%s: %s"

	// UID Generation
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Address Book//Calendar//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goaddressbook"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrSnapshotRead   = "failed to read address book snapshot"
	ErrSnapshotWrite  = "failed to write address book snapshot"
	ErrVCardDecode    = "failed to decode vCard stream"
	ErrVCardEncode    = "failed to encode vCard data"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrCardNoName     = "vCard entry has no formatted name"
	ErrDateParse      = "unable to parse date"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrDataDir        = "could not determine user config dir"
	ErrCreateDir      = "could not create app directory"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks, Defaults & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary = "Birthday: %s"

	// StubVCalendar is the minimal valid iCalendar object used when no events exist.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgVersionOutput = "%s version %s (%s/%s)"
	MsgImportedCount = "Imported %d contact(s).\n"

	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgBookLoaded    = "Address book loaded"
	MsgBookSaved     = "Address book saved"
	MsgGenSuccess    = "Calendar generation successful"
	MsgBdayToday     = "Birthday found today"
	MsgImportDone    = "Import finished"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedNoName = "Skipping vCard without a usable name"
	MsgSkippedDupe   = "Skipping duplicate contact"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedPhone  = "Skipping invalid phone number"
	MsgOddExtension  = "Import source has an unusual file extension"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgPassSaveFail  = "Failed to save credentials to keyring"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyPath      = "path"
	LogKeyUser      = "user"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyAdded     = "added"
	LogKeySkipped   = "skipped"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeyStats     = "stats"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompServer   = "server"
	CompStorage  = "storage"
	CompFetcher  = "fetcher"
	CompCalendar = "calendar"
	CompMain     = "main"
	CompI18n     = "i18n"
)

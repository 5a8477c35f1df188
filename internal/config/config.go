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

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-Register/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Register"
	AppID             = "com.github.tartampluch.go-register"
	KeyringService    = "com.github.tartampluch.go-register"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvPrefix         = "REGISTER"
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
	// Used for the member file, snapshots and logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// FilePermPublic represents -rw-r--r--, for the portal snapshot served by a web server.
	FilePermPublic fs.FileMode = 0644

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1

	// LockFileSuffix is appended to the member file path to build the advisory lock path.
	LockFileSuffix = ".lock"

	// TempFilePattern is used for write-then-rename persistence.
	TempFilePattern = ".register-*.tmp"
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug    = "debug"
	FlagConfig   = "config"
	FlagData     = "data"
	FlagLang     = "lang"
	FlagName     = "name"
	FlagPhone    = "phone"
	FlagEmail    = "email"
	FlagAddress  = "address"
	FlagBirthday = "birthday"
	FlagPhoto    = "photo"
	FlagYes      = "yes"
	FlagDate     = "date"
	FlagURL      = "url"
	FlagUser     = "user"
	FlagFormat   = "format"
	FlagOut      = "out"

	FlagDescDebug    = "Enable debug logging, mirrored to stderr"
	FlagDescConfig   = "Path to the YAML settings file"
	FlagDescData     = "Path to the member file"
	FlagDescLang     = "Interface language (en, fr)"
	FlagDescName     = "Full name (required)"
	FlagDescPhone    = "Phone number"
	FlagDescEmail    = "Email address"
	FlagDescAddress  = "Postal address"
	FlagDescBirthday = "Birthday as DD-MM-YYYY"
	FlagDescPhoto    = "Path of a photo to copy into the image library"
	FlagDescYes      = "Confirm the deletion without asking"
	FlagDescByName   = "Exact name of the member to remove"
	FlagDescDate     = "Reference date as DD-MM-YYYY (defaults to today)"
	FlagDescURL      = "Remote vCard URL (CardDAV or WebDAV)"
	FlagDescUser     = "Username for the remote vCard source"
	FlagDescFormat   = "Export format: json, vcf or ics"
	FlagDescOut      = "Output file (defaults to stdout)"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper)
// -----------------------------------------------------------------------------

const (
	KeyDataFile       = "data_file"
	KeyImagesDir      = "images_dir"
	KeySnapshotFile   = "snapshot_file"
	KeyLanguage       = "language"
	KeyServerPort     = "server_port"
	KeyRefreshMin     = "refresh_interval_min"
	KeyReminder       = "reminder_trigger"
	KeyImportURL      = "import.url"
	KeyImportUser     = "import.user"
	KeyPublishMode    = "publish.mode"
	KeyPublishGitDir  = "publish.git_dir"
	KeyPublishMessage = "publish.commit_message"
	KeyPublishBucket  = "publish.s3_bucket"
	KeyPublishKey     = "publish.s3_key"
	KeyPublishRegion  = "publish.s3_region"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultConfigFile   = "register.yaml"
	DefaultDataFile     = "parish_data.json"
	DefaultImagesDir    = "parish_images"
	DefaultSnapshotFile = "data.json"
	DefaultPort         = "18081"
	DefaultRefreshMin   = 5
	DefaultLanguage     = "en"
	DefaultCommitMsg    = "Update from parish register"
	DefaultS3Key        = "data.json"

	// LookaheadDays is the inclusive horizon of the birthday reminders.
	LookaheadDays = 30

	// EmailNotProvided marks a member registered without an email address.
	EmailNotProvided = "Not provided"

	UIDSalt = "go-register-v1-" // Salt for deterministic calendar UIDs

	PublishModeNone = "none"
	PublishModeGit  = "git"
	PublishModeS3   = "s3"

	ExportJSON = "json"
	ExportVCF  = "vcf"
	ExportICS  = "ics"
)

// SupportedLanguages defines the list of available CLI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Register//Birthdays//EN"
	ICalCalName   = "Member Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goregister"

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

	VCardVersion = "4.0"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateFormatBirthday is the on-disk and command-line birthday layout.
	DateFormatBirthday = "02-01-2006"

	// DateFormatSnapshot stamps the portal snapshot.
	DateFormatSnapshot = "2006-01-02 15:04"

	// Date layouts accepted from vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	VCardNoYearPrefix   = "--"

	DateFormatDisplay = "02 Jan 2006"

	JSONIndent = "    "

	MinPort = 1
	MaxPort = 65535

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d-%d@%s"
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
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/"
	RouteSnapshot       = "/members.json"
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
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrNameRequired     = "name is required"
	ErrInvalidEmail     = "invalid email address"
	ErrInvalidDate      = "invalid date, expected DD-MM-YYYY"
	ErrDuplicateID      = "duplicate member id"
	ErrInvalidID        = "invalid member id"
	ErrStoreRead        = "failed to read member file"
	ErrStoreDecode      = "member file is malformed"
	ErrStoreWrite       = "failed to write member file"
	ErrStoreLock        = "failed to lock member file"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrFetchRequest     = "failed to create request"
	ErrFetchNetwork     = "network error during fetch"
	ErrFetchStatus      = "address book server returned unexpected status"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrPublishMode      = "unsupported publish mode"
	ErrExportFormat     = "unsupported export format"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardEncode      = "failed to encode vCard data"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrSettingsRead     = "failed to read settings file"
	ErrSettingsDecode   = "failed to decode settings"
	ErrSnapshotWrite    = "failed to write portal snapshot"
	ErrSnapshotEncode   = "failed to encode portal snapshot"
	ErrGitCommand       = "git command failed"
	ErrS3Upload         = "failed to upload snapshot to S3"
	ErrS3Config         = "failed to load AWS configuration"
	ErrS3Bucket         = "S3 bucket is required"
	ErrPhotoMissing     = "photo file does not exist"
	ErrPhotoCopy        = "failed to copy photo"
	ErrPhotoRef         = "invalid photo reference"
	ErrPasswordRead     = "failed to read password"
	ErrNotTerminal      = "password prompt requires a terminal"
	ErrKeyring          = "keyring operation failed"
	ErrAmbiguousName    = "several members share this name; remove by id"
	ErrNoMatchingName   = "no member matches this name"
	ErrConfirmRequired  = "deletion requires --yes"
	ErrRemoveArgs       = "remove needs a member id or --name"
	ErrImportArgs       = "import needs a .vcf file or --url"
	ErrUserRequired     = "a username is required (--user or import.user)"
	ErrReminderTrigger  = "reminder trigger must be an ISO-8601 duration such as -P1D"
	ErrNothingToPublish = "snapshot file is empty"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Register initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgStoreLoaded     = "Member file loaded"
	MsgStoreMissing    = "Member file not found, starting with an empty register"
	MsgStorePersisted  = "Member file written"
	MsgMemberAdded     = "Member added"
	MsgMemberRemoved   = "Member removed"
	MsgSchedulerRun    = "Upcoming birthdays computed"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedNoYear   = "Importing contact without birthday (year missing)"
	MsgSkippedInvalid  = "Skipping invalid contact"
	MsgImportDone      = "vCard import finished"
	MsgGenSuccess      = "Calendar generation successful"
	MsgBdayToday       = "Birthday found today"
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgMemberPhotoGone = "Photo of removed member could not be deleted"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgFetchStart      = "Downloading address book"
	MsgFetchStatus     = "Address book server returned error status"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgRefreshFailed   = "Feed refresh failed"
	MsgSettingsMissing = "Settings file not found, using defaults"
	MsgSettingsLoaded  = "Settings loaded"
	MsgSnapshotWritten = "Portal snapshot written"
	MsgPublishDone     = "Portal snapshot published"
	MsgGitNothing      = "Nothing to commit, pushing anyway"
	MsgGitRun          = "git command finished"
	MsgPhotoImported   = "Photo imported"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMemberAdded     = "member_added"    // Requires ID
	TKeyMemberRemoved   = "member_removed"  // Requires ID
	TKeyMemberNotFound  = "member_not_found"
	TKeyNoMembers       = "no_members"
	TKeyAllMembers      = "all_members"     // Requires Count
	TKeySearchResults   = "search_results"  // Requires Count
	TKeyNameCandidates  = "name_candidates" // Requires Name
	TKeyLblID           = "lbl_id"
	TKeyLblName         = "lbl_name"
	TKeyLblPhone        = "lbl_phone"
	TKeyLblEmail        = "lbl_email"
	TKeyLblAddress      = "lbl_address"
	TKeyLblBirthday     = "lbl_birthday"
	TKeyLblPhoto        = "lbl_photo"
	TKeyLblJoined       = "lbl_joined"
	TKeyBdayHeader      = "birthday_header"
	TKeyBdayNone        = "birthday_none"
	TKeyBdayToday       = "birthday_today"
	TKeyBdayInDays      = "birthday_in_days" // Requires Count
	TKeyAgeBirth        = "age_birth"
	TKeyImportDone      = "import_done" // Requires Count, Skipped
	TKeyExportDone      = "export_done" // Requires File
	TKeySnapshotWritten = "snapshot_written"
	TKeyPublishDone     = "publish_done"
	TKeyServeListening  = "serve_listening" // Requires Port
	TKeyCredSaved       = "credentials_saved"
	TKeyCredDeleted     = "credentials_deleted"
	TKeyPasswordPrompt  = "password_prompt"
	TKeyEvtSummaryAge   = "event_summary_age"
	TKeyEvtSummaryBirth = "event_summary_birth"
	TKeyFormatDate      = "format_date_short"
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
	LogKeyPath      = "path"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyID        = "id"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyRef       = "reference_date"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "imported"
	LogKeySkipped   = "skipped"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyDuration  = "duration_ms"
	LogKeyBucket    = "bucket"
	LogKeyArgs      = "args"
	LogKeyOutput    = "output"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
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
	CompStore   = "store"
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompCLI     = "cli"
	CompI18n    = "i18n"
	CompPublish = "publish"
	CompPhotos  = "photos"
	CompConfig  = "config"
)

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
var UserAgent = "Go-Wedding/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Wedding"
	AppID             = "com.github.tartampluch.go-wedding"
	KeyringService    = "com.github.tartampluch.go-wedding"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	IconFile          = "Icon.svg"
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
	// FilePermUserRW represents -rw------- for log files.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ for the cache directory.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize is the buffer of internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable colored debug logging to stderr"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Backend API
// -----------------------------------------------------------------------------

// Endpoint identifiers are relative to the API base URL. EndpointSuffix is
// appended when the request URL is built.
const (
	EndpointSuffix       = ".php"
	EndpointLogin        = "auth/login"
	EndpointRegister     = "auth/register"
	EndpointRefresh      = "auth/refresh"
	EndpointLoadRSVPs    = "load_rsvps"
	EndpointGuestAdd     = "guest_add"
	EndpointGuestUpdate  = "guest_update"
	EndpointBudgetLoad   = "budget_load"
	EndpointBudgetSave   = "budget_save"
	EndpointGiftsLoad    = "gifts_load"
	EndpointGiftsSave    = "gifts_save"
	EndpointTasksLoad    = "tasks_load"
	EndpointTasksSave    = "tasks_save"
	EndpointMessagesLoad = "messages_load"
	EndpointMessageRead  = "message_read"

	BearerPrefix = "Bearer "

	DefaultAPIURL      = "http://localhost:8000/api"
	DefaultHTTPTimeout = 30 * time.Second

	// TokenRefreshWindow is how long before expiry a session is refreshed.
	TokenRefreshWindow = 10 * time.Minute
)

// Credential store keys. The address book password is stored under
// CredKeyImportPrefix followed by the user name.
const (
	CredKeyToken        = "session_token"
	CredKeyUser         = "session_user"
	CredKeyImportPrefix = "carddav:"
)

// Store operations, used as log values and error prefixes.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpRefresh  = "refresh"

	OpLoadGuests  = "load guests"
	OpAddGuest    = "add guest"
	OpUpdateGuest = "update guest"

	OpLoadBudget     = "load budget"
	OpSaveBudget     = "save budget"
	OpSetTotalBudget = "set total budget"
	OpAddCategory    = "add budget category"
	OpUpdateCategory = "update budget category"
	OpDeleteCategory = "delete budget category"
	OpAddItem        = "add budget item"
	OpUpdateItem     = "update budget item"
	OpRemoveItem     = "remove budget item"
	OpTogglePaid     = "toggle budget item paid"
	OpLoadGifts      = "load gifts"
	OpSaveGifts      = "save gifts"
	OpAddGift        = "add gift"
	OpUpdateGift     = "update gift"
	OpDeleteGift     = "delete gift"
	OpLoadTasks      = "load tasks"
	OpSaveTasks      = "save tasks"
	OpAddTask        = "add task"
	OpUpdateTask     = "update task"
	OpDeleteTask     = "delete task"
	OpToggleTask     = "toggle task"
	OpLoadInbox      = "load inbox"
	OpMarkRead       = "mark message read"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace     = "gowedding"
	MetricsSubsystemAPI  = "api"
	MetricsSubsystemFeed = "feed"

	MetricLabelEndpoint = "endpoint"
	MetricLabelMethod   = "method"
	MetricLabelOutcome  = "outcome"
	MetricOutcomeOK     = "ok"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600
	LoginWindowWidth    = 420

	// Preference Keys
	PrefAPIURL          = "api_url"
	PrefCardDAVURL      = "carddav_url"
	PrefUsername        = "username"
	PrefLanguage        = "language"
	PrefInterval        = "refresh_interval_min"
	PrefServerPort      = "server_port"
	PrefSourceMode      = "source_mode"
	PrefLocalPath       = "local_path"
	PrefReminderEnabled = "reminder_enabled"
	PrefReminderValue   = "reminder_value"
	PrefReminderUnit    = "reminder_unit"
	PrefReminderDir     = "reminder_direction"
	PrefLastRun         = "last_run_version"

	// Embedded locale files are named active.<lang>.json.
	LocaleDir    = "locales"
	LocalePrefix = "active."
	LocaleSuffix = ".json"
)

// SupportedLanguages is the fallback list until the embedded locales are scanned.
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// UI Guests Window Constants
// -----------------------------------------------------------------------------

const (
	GuestsWinWidth  = 720
	GuestsWinHeight = 460
	GuestColumns    = 5

	// Table Column IDs
	ColIDName       = 0
	ColIDAttendance = 1
	ColIDParty      = 2
	ColIDGroup      = 3
	ColIDPhone      = 4

	// Table Layout
	ColWidthName       = 220
	ColWidthAttendance = 110
	ColWidthParty      = 70
	ColWidthGroup      = 140
	ColWidthPhone      = 140

	TablePlaceholder = "Cell Content"
	PlaceholderEmail = "you@example.com"
	PlaceholderURL   = "https://..."

	LogMsgOpenGuests   = "Opening guests window"
	LogMsgOpenLogin    = "Opening login window"
	LogMsgOpenSettings = "Opening settings window"
	LogMsgSaveSettings = "Saving settings"
	LogMsgRefreshOff   = "Auto-refresh disabled"
	LogMsgSorted       = "Guests sorted"

	// Sorting Indicators
	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinSettings  = "win_settings_title"
	TKeyWinGuests    = "win_guests_title"
	TKeyWinLogin     = "win_login_title"
	TKeyWinAddGuest  = "win_add_guest_title"
	TKeyMenuRefresh  = "menu_refresh"
	TKeyMenuSaveAll  = "menu_save_all"
	TKeyMenuGuests   = "menu_guests"
	TKeyMenuSettings = "menu_settings"
	TKeyMenuSignIn   = "menu_sign_in"
	TKeyMenuSignOut  = "menu_sign_out" // Requires Email

	TKeyTrayStatus    = "tray_status" // Requires Confirmed, Total, Budget
	TKeyTraySignedOut = "tray_signed_out"
	TKeyTrayError     = "tray_error"
	TKeyTrayNoTask    = "tray_no_task"
	TKeyTrayTaskToday = "tray_task_today" // Requires Title
	TKeyTrayNextTask  = "tray_next_task"  // Plural on Count, requires Title

	TKeyNotifStart       = "notif_sync_start"
	TKeyNotifSuccess     = "notif_sync_success"
	TKeyNotifError       = "notif_err_sync" // Requires Error
	TKeyNotifSignedOut   = "notif_signed_out"
	TKeyNotifSaved       = "notif_saved"
	TKeyNotifSaveError   = "notif_err_save"   // Requires Error
	TKeyNotifImported    = "notif_imported"   // Plural on Count
	TKeyNotifImportError = "notif_err_import" // Requires Error

	TKeyEvtTask       = "event_task"        // Requires Title
	TKeyEvtTaskUrgent = "event_task_urgent" // Requires Title

	// Settings
	TKeyLblServer    = "lbl_server"
	TKeyLblAPIURL    = "lbl_api_url"
	TKeyHelpAPIURL   = "help_api_url"
	TKeyModeCardDAV  = "mode_carddav"
	TKeyModeLocal    = "mode_local"
	TKeyLblLanguage  = "lbl_language"
	TKeyHelpLanguage = "help_language"
	TKeyLblMinutes   = "lbl_minutes_suffix"
	TKeyLblRefresh   = "lbl_refresh_interval"
	TKeyHelpInterval = "help_interval"
	TKeyLblPort      = "lbl_server_port"
	TKeyHelpPort     = "help_port" // Requires URL
	TKeyLblGeneral   = "lbl_general"
	TKeyLblEnableRem = "lbl_enable_reminders"
	TKeyUnitDays     = "unit_days"
	TKeyUnitHours    = "unit_hours"
	TKeyUnitMinutes  = "unit_minutes"
	TKeyDirBefore    = "dir_before"
	TKeyDirAfter     = "dir_after"
	TKeyLblNotif     = "lbl_notifications"
	TKeyBtnSave      = "btn_save"
	TKeyBtnCancel    = "btn_cancel"
	TKeyLblFooter    = "lbl_footer"
	TKeyBtnBrowse    = "btn_browse"
	TKeyLblURL       = "lbl_url"
	TKeyHelpURL      = "help_carddav_url"
	TKeyLblUser      = "lbl_user"
	TKeyLblPass      = "lbl_pass"
	TKeyLblSource    = "lbl_source"
	TKeyLblStartDay  = "lbl_due_date"

	// Login
	TKeyLblEmail     = "lbl_email"
	TKeyLblPassword  = "lbl_password"
	TKeyLblName      = "lbl_name"
	TKeyHelpName     = "help_name"
	TKeyBtnSignIn    = "btn_sign_in"
	TKeyBtnRegister  = "btn_register"
	TKeyLblSigningIn = "lbl_signing_in"

	// Guests
	TKeyLblSearch       = "lbl_search"
	TKeyLblGuestSummary = "lbl_guest_summary" // Requires Confirmed, Total, Headcount
	TKeyFilterAll       = "filter_all"
	TKeyBtnAddGuest     = "btn_add_guest"
	TKeyBtnImport       = "btn_import"
	TKeyAttYes          = "attendance_yes"
	TKeyAttNo           = "attendance_no"
	TKeyAttMaybe        = "attendance_maybe"
	TKeyColName         = "col_name"
	TKeyColAttendance   = "col_attendance"
	TKeyColParty        = "col_party"
	TKeyColGroup        = "col_group"
	TKeyColPhone        = "col_phone"

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
	TKeyErrURL       = "err_api_url"

	// Errors shown in the stores' error slot
	TKeyErrRejected    = "err_rejected"
	TKeyErrCredentials = "err_credentials"
	TKeyErrSession     = "err_session"
	TKeyErrNotFound    = "err_not_found"
	TKeyErrEndpoint    = "err_endpoint"
	TKeyErrTransport   = "err_transport"
	TKeyErrMalformed   = "err_malformed"
	TKeyErrDecode      = "err_decode"
	TKeyErrServer      = "err_server" // Requires Status
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = "18080"
	DefaultRefreshMin    = 30
	DefaultLanguage      = "en"
	DefaultReminderValue = 1
	DisabledInterval     = 0

	// DefaultReminderTrigger fires the alarm one day before the due date.
	DefaultReminderTrigger = "-P1D"
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Wedding//Tasks//EN"
	ICalCalName   = "Wedding Tasks"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gowedding"

	// iCal Fields
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
	PropCategories  = "CATEGORIES"
	PropPriority    = "PRIORITY"

	DefaultICalRefresh = 1 * time.Hour

	// FormatUID expects the task id and ICalDomain.
	FormatUID = "%s@%s"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	MinPort = 1
	MaxPort = 65535

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 5 * 1024 * 1024 // 5MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteTasksFeed      = "/tasks.ics"
	RouteMetrics        = "/metrics"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderAuthorization   = "Authorization"
	HeaderCSRFToken       = "X-CSRF-Token"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeJSON            = "application/json"
	MimeVCard           = "text/vcard"
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
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrMissingHost      = "URL has no host"
	ErrBadEndpoint      = "endpoint must be a relative path"
	ErrEncodeBody       = "failed to encode request body"
	ErrCSRFMissing      = "CSRF endpoint returned no token"
	ErrRefreshFailed    = "session refresh failed"
	ErrBuildRequest     = "failed to build request"
	ErrFetch            = "address book request failed"
	ErrFetchStatus      = "address book server returned status"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrKeyringRead      = "failed to read from keyring"
	ErrKeyringWrite     = "failed to write to keyring"
	ErrKeyringDelete    = "failed to delete from keyring"
	ErrSettings         = "invalid settings"
	ErrHTTPTimeout      = "HTTP timeout must be positive"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Task calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary     = "%s"
	FallbackTrayDefault = "%d/%d guests confirmed"
	FallbackTrayLabel   = "Go Wedding"

	// StubVCalendar is the minimal valid iCalendar object served when no
	// task is due.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"

	MsgPortBusy          = "Port %s is busy or unavailable."
	MsgSyncFailed        = "Synchronization failed"
	MsgSyncReq           = "Sync requested"
	MsgWorkerStart       = "Background worker started"
	MsgWorkerStop        = "Worker stopping due to context cancellation"
	MsgUpdateSync        = "Updating sync interval"
	MsgResumeFailed      = "Could not resume the stored session"
	MsgInboxFailed       = "Inbox refresh failed"
	MsgFeedFailed        = "Task calendar generation failed"
	MsgFeedGenerated     = "Task calendar generated"
	MsgTasksDueToday     = "Tasks due today"
	MsgSaveFailed        = "Saving planner data failed"
	MsgAPIURLChanged     = "API URL changed"
	MsgAppStop           = "Application stopped gracefully"
	MsgCtxCancel         = "Context cancelled, shutting down UI"
	MsgAppStarting       = "Starting application"
	MsgServerListen      = "HTTP server listening"
	MsgServerStop        = "Shutting down HTTP server..."
	MsgCacheUpdated      = "Task calendar cache updated"
	MsgSkippedCard       = "Skipping vCard without a name"
	MsgUndecodableCard   = "Skipping malformed vCard"
	MsgImportStarted     = "Guest import started"
	MsgImportDone        = "Guest import finished"
	MsgAddressBookOpened = "Address book opened"
	MsgLocaleSkip        = "Skipping non-locale file"
	MsgLocaleBadName     = "Skipping malformed locale filename"
	MsgLocaleLoaded      = "Locale loaded successfully"
	MsgTransMissing      = "Missing translation key"
	MsgPassFail          = "Password retrieval failed (might be empty)"
	MsgLogWarning        = "Warning: %s at %s: %v\n"

	// API client
	MsgRequestStart = "API request started"
	MsgRequestDone  = "API request completed"
	MsgServerStatus = "API returned non-success status"
	MsgCSRFDisabled = "No CSRF endpoint configured, requests are sent without a CSRF token"

	// Session
	MsgSignedIn       = "Signed in"
	MsgSignedOut      = "Signed out"
	MsgAuthFailed     = "Authentication failed"
	MsgAuthRejected   = "The server rejected the request"
	MsgForcedSignOut  = "Session ended after a failed refresh"
	MsgProfileCorrupt = "Stored user profile is unreadable"

	// Data store
	MsgLoadComplete  = "Planner data loaded"
	MsgStoreOpFailed = "Planner operation failed"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyMethod    = "method"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyUserID    = "user_id"
	LogKeyOperation = "operation"
	LogKeyTotal     = "total_cards"
	LogKeySkipped   = "skipped"
	LogKeyToday     = "due_today"
	LogKeyGuests    = "guests"
	LogKeyTasks     = "tasks"
	LogKeyGifts     = "gifts"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"

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
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompAPI      = "api"
	CompSession  = "session"
	CompStore    = "store"
	CompCalendar = "calendar"
	CompImport   = "import"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)

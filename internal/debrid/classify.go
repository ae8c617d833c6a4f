package debrid

import (
	"errors"
	"net/http"

	"github.com/amaumene/gostremiomux/pkg/alldebrid"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/realdebrid"
)

var (
	errPending        = errors.New("download not ready")
	errNoMatchingFile = errors.New("no matching file")
)

// contentError reports a torrent the store refused or could not fetch.
type contentError struct {
	status string
}

func (e *contentError) Error() string {
	return "torrent rejected by store: " + e.status
}

var allDebridCodes = map[string]Kind{
	"AUTH_MISSING_APIKEY":         KindUnauthorized,
	"AUTH_BAD_APIKEY":             KindUnauthorized,
	"AUTH_MISSING_AGENT":          KindUnauthorized,
	"AUTH_BAD_AGENT":              KindUnauthorized,
	"AUTH_BLOCKED":                KindForbidden,
	"AUTH_USER_BANNED":            KindForbidden,
	"MUST_BE_PREMIUM":             KindForbidden,
	"MAGNET_MUST_BE_PREMIUM":      KindForbidden,
	"FREE_TRIAL_LIMIT_REACHED":    KindQuotaExceeded,
	"MAGNET_TOO_MANY_ACTIVE":      KindQuotaExceeded,
	"MAGNET_TOO_MANY":             KindQuotaExceeded,
	"LINK_HOST_LIMIT_REACHED":     KindQuotaExceeded,
	"LINK_TOO_MANY_DOWNLOADS":     KindQuotaExceeded,
	"MAGNET_INVALID_URI":          KindUnsupported,
	"MAGNET_INVALID_ID":           KindUnsupported,
	"MAGNET_NO_URI":               KindUnsupported,
	"MAGNET_FILE_UPLOAD_FAILED":   KindUnsupported,
	"MAGNET_INVALID_FILE":         KindUnsupported,
	"LINK_HOST_NOT_SUPPORTED":     KindUnsupported,
	"LINK_DOWN":                   KindUnsupported,
	"LINK_IS_MISSING":             KindUnsupported,
	"LINK_NOT_SUPPORTED":          KindUnsupported,
	"LINK_ERROR":                  KindUnsupported,
	"LINK_HOST_UNAVAILABLE":       KindUnsupported,
	"LINK_TEMPORARY_UNAVAILABLE":  KindUnsupported,
	"LINK_PASS_PROTECTED":         KindUnsupported,
	"LINK_HOST_FULL":              KindQuotaExceeded,
	"LINK_DMCA":                   KindLegallyUnavailable,
	"MAGNET_DMCA":                 KindLegallyUnavailable,
	"NO_SERVER":                   KindForbidden,
	"MAGNET_NO_SERVER":            KindForbidden,
	"LINK_IS_NOT_AVAILABLE_IN_CC": KindLegallyUnavailable,
}

var realDebridCodes = map[int]Kind{
	8:  KindUnauthorized,       // bad_token
	9:  KindForbidden,          // permission_denied
	12: KindUnauthorized,       // bad_token
	14: KindForbidden,          // account_locked
	16: KindUnsupported,        // hoster_unsupported
	19: KindUnsupported,        // hoster_not_free
	20: KindForbidden,          // hoster_in_maintenance
	21: KindQuotaExceeded,      // too_many_active_downloads
	22: KindForbidden,          // ip_not_allowed
	23: KindQuotaExceeded,      // traffic_exhausted
	24: KindUnsupported,        // file_unavailable
	25: KindUnsupported,        // services_unavailable
	29: KindUnsupported,        // torrent_too_big
	30: KindUnsupported,        // torrent_file_invalid
	33: KindUnsupported,        // torrent_already_active
	34: KindQuotaExceeded,      // too_many_requests
	35: KindLegallyUnavailable, // infringing_file
	36: KindQuotaExceeded,      // fair_usage_limit
}

var statusKinds = map[int]Kind{
	http.StatusUnauthorized:               KindUnauthorized,
	http.StatusForbidden:                  KindForbidden,
	http.StatusTooManyRequests:            KindQuotaExceeded,
	http.StatusUnavailableForLegalReasons: KindLegallyUnavailable,
	http.StatusRequestEntityTooLarge:      KindUnsupported,
}

// Classify maps a provider error onto a Kind. Provider codes take precedence
// over the HTTP status; a code missing from the provider's table is unknown.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var adErr *alldebrid.APIError
	if errors.As(err, &adErr) {
		if adErr.Code == "" {
			return byStatus(adErr.StatusCode)
		}
		if k, ok := allDebridCodes[adErr.Code]; ok {
			return k
		}
		return KindUnknown
	}

	var rdErr *realdebrid.APIError
	if errors.As(err, &rdErr) {
		if rdErr.Code == 0 {
			return byStatus(rdErr.StatusCode)
		}
		if k, ok := realDebridCodes[rdErr.Code]; ok {
			return k
		}
		return KindUnknown
	}

	var ce *contentError
	if errors.As(err, &ce) {
		return KindUnsupported
	}
	if errors.Is(err, errNoMatchingFile) {
		return KindNoMatchingFile
	}

	return byStatus(httputil.StatusCode(err))
}

func byStatus(status int) Kind {
	if k, ok := statusKinds[status]; ok {
		return k
	}
	return KindUnknown
}

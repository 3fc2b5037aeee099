// AngelaMos | 2026
// params.go

package core

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var ErrInvalidID = BadRequestError("invalid id")

func URLParamID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// QueryInt64 returns ok=false when the parameter is absent. A present but
// malformed value is a 400 naming the parameter.
func QueryInt64(r *http.Request, key string) (int64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, BadRequestError("invalid " + key)
	}
	return v, true, nil
}

func QueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	v, ok, err := QueryInt64(r, key)
	if err != nil || !ok {
		return defaultVal, err
	}
	return int(v), nil
}

// QueryBool accepts 1/0, true/false, yes/no and on/off.
func QueryBool(r *http.Request, key string, defaultVal bool) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	switch raw {
	case "":
		return defaultVal, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return defaultVal, BadRequestError("invalid " + key)
}

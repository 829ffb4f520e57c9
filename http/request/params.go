package request

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// RouteInt64Param returns an URL route parameter as int64.
func RouteInt64Param(r *http.Request, param string) int64 {
	vars := mux.Vars(r)
	value, err := strconv.ParseInt(vars[param], 10, 64)
	if err != nil {
		return 0
	}

	if value < 0 {
		return 0
	}

	return value
}

// QueryStringParam returns a query parameter, or nil when absent.
func QueryStringParam(r *http.Request, param string) *string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil
	}
	return &value
}

// QueryIntParam returns a query parameter as int, or the default when
// absent. A non-numeric value is an error.
func QueryIntParam(r *http.Request, param string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

// QueryFloatParam returns a query parameter as float64, or nil when
// absent. A non-numeric value is an error.
func QueryFloatParam(r *http.Request, param string) (*float64, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

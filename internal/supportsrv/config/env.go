package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// envBindings maps environment variables (without EnvPrefix) to config keys.
var envBindings = map[string]string{
	"SERVER_HOST":                  "server.host",
	"SERVER_PORT":                  "server.port",
	"SERVER_HANDLE_CORS":           "server.handle_cors",
	"SERVER_ALLOWED_ORIGINS":       "server.allowed_origins",
	"SERVER_REQUEST_TIMEOUT":       "server.request_timeout",
	"SERVER_MAX_REQUEST_BODY_SIZE": "server.max_request_body_size",
	"DB_HOST":                      "db.host",
	"DB_PORT":                      "db.port",
	"DB_NAME":                      "db.dbname",
	"DB_USER":                      "db.user",
	"DB_PASSWORD":                  "db.password",
	"DB_SSLMODE":                   "db.sslmode",
	"DB_MAX_OPEN_CONNS":            "db.max_open_conns",
	"DB_MAX_IDLE_CONNS":            "db.max_idle_conns",
	"DB_CONN_MAX_LIFETIME":         "db.conn_max_lifetime",
	"DB_STATEMENT_TIMEOUT":         "db.statement_timeout",
	"DB_LOCK_TIMEOUT":              "db.lock_timeout",
	"DB_CONNECT_RETRIES":           "db.connect_retries",
	"LOG_LEVEL":                    "log.level",
}

// applyEnv overlays SUPPORT_* variables from environ ("KEY=value" pairs) onto c.
// Values are strings; mapstructure converts them to the field types.
func applyEnv(c *ConfigParam, environ []string) error {
	overrides := map[string]any{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path, ok := envBindings[strings.TrimPrefix(key, EnvPrefix)]
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(path, ".")
		m, _ := overrides[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			overrides[section] = m
		}
		if field == "allowed_origins" {
			// mapstructure reuses an existing slice element by element
			c.Server.AllowedOrigins = nil
			m[field] = splitList(value)
		} else {
			m[field] = value
		}
	}
	if len(overrides) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(overrides)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package config loads and validates hydro-gateway configuration.
//
// Configuration is a YAML file with ${VAR} environment variable expansion:
//
//	environment: DEVELOPMENT
//	server:
//	  http_addr: ":8080"
//	database:
//	  path: /var/lib/hydro/gateway.db
//	auth:
//	  jwt_secret: ${HYDRO_JWT_SECRET}
//	  token_ttl: 12h
//	logging:
//	  level: info
//	  format: text
//
// The jwt_secret is the single symmetric signing key for the process; the
// environment value is stamped into every issued token and compared against
// inbound tokens.
package config

// Package config loads and validates Dinodia Core configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides for deployment-specific values and secrets:
//
//	site:
//	  id: "dinodia-001"
//	database:
//	  path: "./data/dinodia.db"
//	api:
//	  port: 8080
//	hub:
//	  timeout: 10
//	voice:
//	  household_id: 1
//	security:
//	  jwt:
//	    secret: ""   # set DINODIA_JWT_SECRET instead
//
// Per-household hub credentials (base URL, access token) are not
// configuration; they live in the hub_instances table and are managed
// through the API.
package config

// Package config loads the compose tool configuration.
//
// The configuration lives in compose.json or compose.yaml at the project
// root. Both formats share one schema:
//
//	name: counters
//	debug: false
//	server:
//	  host: localhost
//	  port: 3000
//	  shutdownTimeout: 5s
//	demo:
//	  clicks: 5
//	  components: [reactive, ref, watch]
//	metrics:
//	  enabled: true
//	  namespace: compose
//	  path: /metrics
//	host:
//	  maxPasses: 64
//
// Missing fields take their defaults. COMPOSE_HOST, COMPOSE_PORT,
// COMPOSE_DEBUG and COMPOSE_CLICKS override the file.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config

// Package config provides configuration parsing for vela.
//
// The configuration is stored in vela.yaml (or vela.yml, or vela.json) in
// the working directory. Every field is optional.
//
// # Configuration File Structure
//
//	name: demo
//	demo: counter
//	scheduler:
//	  maxSteps: 10000
//	server:
//	  host: localhost
//	  port: 3000
//	  metricsPath: /metrics
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  namespace: vela
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Max steps:", cfg.Scheduler.MaxSteps)
package config

// Package config provides configuration management for the catalog sync
// service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: item store (MySQL) connection details
//   - Pim: remote catalog service credentials and root catalog
//   - Storage: snapshot archive (S3/MinIO) credentials and bucket
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Pim.RootCatalogID)
package config

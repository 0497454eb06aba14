// Package config loads, normalizes, and validates vidscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads optional .env files, and honours
// environment fallbacks such as GOOGLE_API_KEY and OPENAI_API_KEY. The Config
// type centralizes every knob the pipeline and CLI need so directories,
// audio parameters, and speech provider credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config

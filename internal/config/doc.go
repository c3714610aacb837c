// Package config loads, normalizes, and validates hardsub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, overlays a .env file from the working
// directory, and honours environment fallbacks such as HARDSUB_OCR_COMMAND.
// The Config type centralizes the pipeline knobs (sample rate, change
// threshold, hold and fill gaps), the last-used region of interest, and the
// external tool settings for ffmpeg and the text-recognition engine.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

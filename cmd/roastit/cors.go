package main

import (
	"slices"

	"github.com/labstack/echo/v4/middleware"
)

// corsConfig sends credentials only to explicitly listed origins.
func corsConfig(origins []string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: len(origins) > 0 && !slices.Contains(origins, "*"),
	}
}

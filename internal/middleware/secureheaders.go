package middleware

import "github.com/gofiber/fiber/v2"

var securityHeaders = map[string]string{
	"Strict-Transport-Security": "max-age=63072000; includeSubdomains",
	"X-Content-Type-Options":    "nosniff",
	"Content-Security-Policy":   "script-src 'self'; object-src 'self'",
	"Referrer-Policy":           "strict-origin-when-cross-origin",
	"Cache-Control":             "no-cache",
	"Permissions-Policy": "accelerometer=(), ambient-light-sensor=(), autoplay=(), battery=(), camera=(), " +
		"clipboard-read=(), clipboard-write=(), cross-origin-isolated=(), display-capture=(), " +
		"document-domain=(), encrypted-media=(), execution-while-not-rendered=(), " +
		"execution-while-out-of-viewport=(), fullscreen=(), gamepad=(), geolocation=(), " +
		"gyroscope=(), magnetometer=(), microphone=(), midi=(), navigation-override=(), " +
		"payment=(), picture-in-picture=(), publickey-credentials-get=(), screen-wake-lock=(), " +
		"speaker=(), speaker-selection=(), sync-xhr=(), usb=(), web-share=(), " +
		"xr-spatial-tracking=()",
}

// SecureHeaders stamps hardening headers on every response.
func SecureHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		for header, value := range securityHeaders {
			c.Set(header, value)
		}
		return err
	}
}

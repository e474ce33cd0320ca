package webutil

const (
	// Header Keys
	HeaderContentType     = "Content-Type"
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// Content Types
	ContentTypeJSONUTF8      = "application/json; charset=utf-8"
	ContentTypeTextPlainUTF8 = "text/plain; charset=utf-8"
	ContentTypeForm          = "application/x-www-form-urlencoded"

	// Authorization scheme expected on protected routes
	SchemeBearer = "Bearer"
)

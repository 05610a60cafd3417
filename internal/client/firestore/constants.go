package firestore

const (
	// apiVersion is the REST API version prefix.
	apiVersion = "v1"

	// authorizationHeader carries the caller's ID token.
	authorizationHeader = "Authorization"
	// bearerPrefix precedes the ID token in the authorization header.
	bearerPrefix = "Bearer "

	// maxSafeInteger is the largest integer stored as integerValue when given as a float.
	maxSafeInteger = 1<<53 - 1
)

// Typed value keys of the wire format.
const (
	kindNull      = "nullValue"
	kindBoolean   = "booleanValue"
	kindInteger   = "integerValue"
	kindDouble    = "doubleValue"
	kindTimestamp = "timestampValue"
	kindString    = "stringValue"
	kindBytes     = "bytesValue"
	kindReference = "referenceValue"
	kindGeoPoint  = "geoPointValue"
	kindArray     = "arrayValue"
	kindMap       = "mapValue"
)

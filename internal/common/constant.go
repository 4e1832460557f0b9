package common

// AuthorizationHeader carries the bearer access token on API requests.
const AuthorizationHeader = "Authorization"

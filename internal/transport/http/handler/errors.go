package handler

const (
	errInternalServer       = "Internal server error"
	errProductNotFound      = "Product not found"
	errIncorrectCredentials = "Incorrect username or password"
	errCouldNotValidate     = "Could not validate credentials"
)

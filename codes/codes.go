package codes

const (
	CODE_SUCCESS        = 200
	CODE_ERR_PARAMS     = 400
	CODE_ERR_NOT_FOUND  = 404
	CODE_ERR_UNEXPECTED = 500
)

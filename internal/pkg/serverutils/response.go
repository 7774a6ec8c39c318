package serverutils

// BaseResponse is the envelope for every non-streaming success response.
type BaseResponse[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func MessageResponse(message string) BaseResponse[any] {
	return BaseResponse[any]{
		Status:  "success",
		Message: message,
	}
}

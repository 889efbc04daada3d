package models

import "encoding/json"

// Response pairs an envelope with the HTTP status it should be sent with.
// The status never appears in the JSON body.
type Response struct {
	StatusCode int
	Body       Envelope
}

// Envelope is the uniform JSON body returned by every endpoint.
//
// Its fields are unexported so that only Success and Failure can build one:
// a success envelope never carries errors and a failure envelope never
// carries data.
type Envelope struct {
	success bool
	message string
	data    interface{}
	errors  interface{}
}

// Success creates a success response. message is omitted when empty and
// data when nil.
func Success(statusCode int, message string, data interface{}) Response {
	return Response{
		StatusCode: statusCode,
		Body: Envelope{
			success: true,
			message: message,
			data:    data,
		},
	}
}

// Failure creates an error response. message is omitted when empty and
// errorDetail when nil.
func Failure(statusCode int, message string, errorDetail interface{}) Response {
	return Response{
		StatusCode: statusCode,
		Body: Envelope{
			success: false,
			message: message,
			errors:  errorDetail,
		},
	}
}

// Succeeded reports the envelope's success flag
func (e Envelope) Succeeded() bool {
	return e.success
}

// Message returns the envelope's message, empty if none was set
func (e Envelope) Message() string {
	return e.message
}

// Data returns the payload of a success envelope
func (e Envelope) Data() interface{} {
	return e.data
}

// Errors returns the error detail of a failure envelope
func (e Envelope) Errors() interface{} {
	return e.errors
}

// MarshalJSON writes {success, message?, data?, errors?}
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool        `json:"success"`
		Message string      `json:"message,omitempty"`
		Data    interface{} `json:"data,omitempty"`
		Errors  interface{} `json:"errors,omitempty"`
	}{
		Success: e.success,
		Message: e.message,
		Data:    e.data,
		Errors:  e.errors,
	})
}

// FileURL is the payload returned for file lookups and uploads
type FileURL struct {
	URL string `json:"url"`
}

// KeyConflict is the error detail returned when an upload key is taken
type KeyConflict struct {
	Key string `json:"key"`
}

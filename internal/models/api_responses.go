// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package models

// ErrorResponse is the JSON body returned for every failed request:
//
//	{
//	  "error": {
//	    "code": "DUPLICATE_EMAIL",
//	    "message": "an account with this email already exists"
//	  }
//	}
//
// Successful responses return the document (or document array) directly,
// without an envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes used by the API:
//   - DUPLICATE_EMAIL: registration with an email that already exists
//   - INVALID_CREDENTIALS: login with unknown email or wrong password
//   - NOT_FOUND: marker id does not resolve
//   - VALIDATION_ERROR: request body failed shape validation
//   - STORE_ERROR: document store failure
//   - IO_ERROR: upload persistence failure
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo carries a parsed error code and message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and driver errors into a code/message pair
// that is safe to show to clients. Context is a short description of the
// operation, used to pick a more specific message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "an internal error occurred",
		}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// Unique constraint violation (postgres 23505, sqlite "UNIQUE constraint failed")
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key constraint violation (postgres 23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "a referenced record does not exist",
		}
	}

	// Not null violation (postgres 23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "an internal error occurred, please try again later",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "group_requests") {
		return ErrorInfo{Code: RequestAlreadyExists, Message: "group request already exists"}
	}
	if strings.Contains(errStr, "group_players") {
		return ErrorInfo{Code: GroupAlreadyJoined, Message: "user is already in the group"}
	}
	if strings.Contains(errStr, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "email already in use"}
	}
	if strings.Contains(errStr, "username") {
		return ErrorInfo{Code: AuthUsernameExists, Message: "username already in use"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "record already exists"}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "group request") || strings.Contains(contextLower, "request") {
		return "group request not found"
	}
	if strings.Contains(contextLower, "group") {
		return "group not found"
	}
	if strings.Contains(contextLower, "user") {
		return "user not found"
	}
	if strings.Contains(contextLower, "token") {
		return "token not found"
	}
	return "requested record not found"
}

// ParseAndRespond parses err and writes the resulting error response
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

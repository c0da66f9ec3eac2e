package errors

// ErrorCode identifies an application error category
type ErrorCode int32

const (
	ErrorCode_HTTP_OK             ErrorCode = 0
	ErrorCode_INTERNAL            ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT    ErrorCode = 1001
	ErrorCode_NOT_FOUND           ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD     ErrorCode = 1003
	ErrorCode_PROCESSING_FAILED   ErrorCode = 1004
	ErrorCode_VALIDATION_FAILED   ErrorCode = 2000
	ErrorCode_SCHEMA_INVALID      ErrorCode = 2001
	ErrorCode_SERVICE_UNAVAILABLE ErrorCode = 2002
	ErrorCode_EXTRACTION_FAILED   ErrorCode = 2003
	ErrorCode_EVALUATION_FAILED   ErrorCode = 2004
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:             "OK",
	ErrorCode_INTERNAL:            "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:    "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:           "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:     "INVALID_PAYLOAD",
	ErrorCode_PROCESSING_FAILED:   "PROCESSING_FAILED",
	ErrorCode_VALIDATION_FAILED:   "VALIDATION_FAILED",
	ErrorCode_SCHEMA_INVALID:      "SCHEMA_INVALID",
	ErrorCode_SERVICE_UNAVAILABLE: "SERVICE_UNAVAILABLE",
	ErrorCode_EXTRACTION_FAILED:   "EXTRACTION_FAILED",
	ErrorCode_EVALUATION_FAILED:   "EVALUATION_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

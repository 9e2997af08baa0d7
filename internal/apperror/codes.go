package apperror

// Code identifies a failure class. Callers branch on codes, never on messages.
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidAmount   Code = "INVALID_AMOUNT"
	CodeInvalidMint     Code = "INVALID_MINT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Ledger (Solana RPC) errors
const (
	CodeLedgerConnectionFailed Code = "LEDGER_CONNECTION_FAILED"
	CodeLedgerRPCError         Code = "LEDGER_RPC_ERROR"
	CodeAccountNotFound        Code = "ACCOUNT_NOT_FOUND"
)

// Reserve resolution errors
const (
	CodeUnresolvedPair       Code = "UNRESOLVED_PAIR"
	CodeDecodeFailure        Code = "DECODE_FAILURE"
	CodePoolReservesNotFound Code = "POOL_RESERVES_NOT_FOUND"
	CodeRegistryAPIError     Code = "REGISTRY_API_ERROR"
)

// Unit normalisation errors
const (
	CodeCatalogFetchFailed Code = "CATALOG_FETCH_FAILED"
	CodeScaleCacheError    Code = "SCALE_CACHE_ERROR"
)

// Venue comparison errors
const (
	CodeVenueQuoteFailed Code = "VENUE_QUOTE_FAILED"
	CodeInvalidQuote     Code = "INVALID_QUOTE"
	CodeNoVenueQuotes    Code = "NO_VENUE_QUOTES"
)

// Circuit breaker errors
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

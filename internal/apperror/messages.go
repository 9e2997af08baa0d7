package apperror

var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidAmount:   "Invalid token amount",
	CodeInvalidMint:     "Invalid mint address",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeLedgerConnectionFailed: "Failed to connect to Solana RPC",
	CodeLedgerRPCError:         "Solana RPC call failed",
	CodeAccountNotFound:        "Account does not exist on the ledger",

	CodeUnresolvedPair:       "Pool has no resolvable token pair",
	CodeDecodeFailure:        "Pool account layout could not be decoded",
	CodePoolReservesNotFound: "Pool reserves could not be resolved by any strategy",
	CodeRegistryAPIError:     "Pool registry API error",

	CodeCatalogFetchFailed: "Failed to fetch token catalog",
	CodeScaleCacheError:    "Scale cache error",

	CodeVenueQuoteFailed: "Venue quote failed",
	CodeInvalidQuote:     "Invalid quote data",
	CodeNoVenueQuotes:    "No venue returned a quote",

	CodeCircuitOpen: "Circuit breaker is open",
}

package diagnostics

// Diagnostic codes for the FLARE front-end
const (
	// Lexer errors (L prefix)
	ErrUnexpectedCharacter   = "L0001"
	ErrUnterminatedString    = "L0002"
	ErrInvalidNumber         = "L0003"
	ErrInconsistentIndent    = "L0004"
	ErrUnterminatedFString   = "L0005"
	ErrUnbalancedInterpolant = "L0006"

	// Parser errors (P prefix)
	ErrUnexpectedToken    = "P0001"
	ErrExpectedToken      = "P0002"
	ErrInvalidExpression  = "P0003"
	ErrInvalidStatement   = "P0004"
	ErrInvalidDeclaration = "P0005"
	ErrMissingIdentifier  = "P0006"
	ErrInvalidPattern     = "P0007"
	ErrMisplacedAwait     = "P0008"

	// Resolution errors (R prefix)
	ErrUndefinedName      = "R0001"
	ErrRedeclaredSymbol   = "R0002"
	ErrPrivateSymbol      = "R0003"
	ErrModuleNotFound     = "R0004"
	ErrCyclicImport       = "R0005"
	ErrConflictingExports = "R0006"
	ErrStateOutsideActor  = "R0007"

	// Type checker errors (T prefix)
	ErrTypeMismatch       = "T0001"
	ErrNotCallable        = "T0002"
	ErrWrongArgumentCount = "T0003"
	ErrInvalidOperation   = "T0004"
	ErrNotIndexable       = "T0005"
	ErrUnresolvedTypeVar  = "T0006"
	ErrUnknownAnnotation  = "T0007"
	ErrUnknownVariant     = "T0008"

	// Warnings (W prefix)
	WarnShadowedName       = "W0001"
	WarnNonExhaustive      = "W0002"
	WarnUnusedImport       = "W0003"
	WarnDynamicCall        = "W0004"
	WarnUnreachablePattern = "W0005"
)

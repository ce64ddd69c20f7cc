package exchange

// Result represents an operation result code.
type Result int

// Operation result codes, organized by category:
// tes (success), tec (rejected against current state, nothing applied),
// tem (malformed operation), tef (internal failure).
const (
	// tesSUCCESS: the operation applied and all side effects committed.
	TesSUCCESS Result = 0

	// tec codes (100-199): well-formed operation rejected against current
	// ledger or collaborator state. No state change survives.
	TecNO_LISTING        Result = 100 // no active offer at the key
	TecWRONG_PAYMENT     Result = 101 // payment does not equal the offer price exactly
	TecNOT_OWNER         Result = 102 // caller does not own the asset per the registry
	TecNOT_LISTING_OWNER Result = 103 // caller is not the recorded seller
	TecASSET_TRANSFER    Result = 110 // asset registry reported transfer failure
	TecVALUE_TRANSFER    Result = 111 // value channel reported send failure
	TecREENTRANT         Result = 120 // nested invocation while the guard is held

	// tef codes (-199 to -100): internal failure, operation not applied.
	TefINTERNAL Result = -199
	TefSTORE    Result = -198 // offer store rejected the commit batch

	// tem codes (-299 to -200): malformed operation, never applied.
	TemMALFORMED   Result = -299
	TemBAD_PRICE   Result = -298 // price must be positive
	TemBAD_ACCOUNT Result = -297 // missing or null caller identity
	TemBAD_ASSET   Result = -296 // missing asset or asset ID
	TemUNKNOWN     Result = -264 // unknown operation type
)

// String returns the canonical code name.
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecNO_LISTING:
		return "tecNO_LISTING"
	case TecWRONG_PAYMENT:
		return "tecWRONG_PAYMENT"
	case TecNOT_OWNER:
		return "tecNOT_OWNER"
	case TecNOT_LISTING_OWNER:
		return "tecNOT_LISTING_OWNER"
	case TecASSET_TRANSFER:
		return "tecASSET_TRANSFER"
	case TecVALUE_TRANSFER:
		return "tecVALUE_TRANSFER"
	case TecREENTRANT:
		return "tecREENTRANT"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefSTORE:
		return "tefSTORE"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_PRICE:
		return "temBAD_PRICE"
	case TemBAD_ACCOUNT:
		return "temBAD_ACCOUNT"
	case TemBAD_ASSET:
		return "temBAD_ASSET"
	case TemUNKNOWN:
		return "temUNKNOWN"
	default:
		return "unknown"
	}
}

// Message returns a human-readable description of the result.
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The operation was applied."
	case TecNO_LISTING:
		return "No active offer exists for the asset."
	case TecWRONG_PAYMENT:
		return "The payment does not match the offer price exactly."
	case TecNOT_OWNER:
		return "The caller does not currently own the asset."
	case TecNOT_LISTING_OWNER:
		return "The caller is not the seller of the offer."
	case TecASSET_TRANSFER:
		return "The asset registry rejected the ownership transfer."
	case TecVALUE_TRANSFER:
		return "The value channel rejected the payment transfer."
	case TecREENTRANT:
		return "The exchange is already executing an operation on this call chain."
	case TefINTERNAL:
		return "An internal error prevented the operation from applying."
	case TefSTORE:
		return "The offer store rejected the commit."
	case TemMALFORMED:
		return "The operation is malformed."
	case TemBAD_PRICE:
		return "The price must be greater than zero."
	case TemBAD_ACCOUNT:
		return "The operation is missing a valid caller account."
	case TemBAD_ASSET:
		return "The operation is missing the asset or asset ID."
	case TemUNKNOWN:
		return "The operation type is not recognized."
	default:
		return "Unknown result code."
	}
}

// IsSuccess reports whether the operation applied.
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec reports whether the result is a state rejection.
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef reports whether the result is an internal failure.
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem reports whether the operation was malformed.
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

package domain

// DataClassification labels the sensitivity of a PHI field for audit records.
type DataClassification string

const (
	// ClassificationPHI marks directly identifying health information.
	ClassificationPHI DataClassification = "phi"

	// ClassificationSensitive marks clinical data that identifies indirectly.
	ClassificationSensitive DataClassification = "sensitive"

	// ClassificationInternal marks operational data with no patient identifiers.
	ClassificationInternal DataClassification = "internal"
)

// PHIField describes a logical PHI field category this service protects.
// The field type is bound into every envelope's authenticated data, so the
// registry fixes the closed set of values an envelope may carry.
type PHIField struct {
	// Type is the logical category, e.g. "ssn" or "diagnosis".
	Type string
	// Classification drives the data_classification on audit events.
	Classification DataClassification
	// KeyContext is the key context used to resolve encryption keys for this
	// field. Multiple field types may share a context.
	KeyContext string
}

// defaultFieldRegistry lists the PHI field categories most likely to carry
// direct patient identifiers. Display-name style fields protected by
// row-level access control are intentionally absent.
var defaultFieldRegistry = map[string]PHIField{
	"ssn":            {Type: "ssn", Classification: ClassificationPHI, KeyContext: "identifiers"},
	"mrn":            {Type: "mrn", Classification: ClassificationPHI, KeyContext: "identifiers"},
	"insurance_id":   {Type: "insurance_id", Classification: ClassificationPHI, KeyContext: "identifiers"},
	"phone":          {Type: "phone", Classification: ClassificationPHI, KeyContext: "contact"},
	"email":          {Type: "email", Classification: ClassificationPHI, KeyContext: "contact"},
	"address_line":   {Type: "address_line", Classification: ClassificationPHI, KeyContext: "contact"},
	"date_of_birth":  {Type: "date_of_birth", Classification: ClassificationPHI, KeyContext: "identifiers"},
	"diagnosis":      {Type: "diagnosis", Classification: ClassificationSensitive, KeyContext: "clinical"},
	"medication":     {Type: "medication", Classification: ClassificationSensitive, KeyContext: "clinical"},
	"clinical_notes": {Type: "clinical_notes", Classification: ClassificationSensitive, KeyContext: "clinical"},
	"lab_result":     {Type: "lab_result", Classification: ClassificationSensitive, KeyContext: "clinical"},
}

// LookupField resolves a logical field type from the registry.
// Returns ErrUnknownFieldType for values outside the closed set.
func LookupField(fieldType string) (PHIField, error) {
	field, ok := defaultFieldRegistry[fieldType]
	if !ok {
		return PHIField{}, ErrUnknownFieldType
	}
	return field, nil
}

// FieldTypes returns the registered logical field types.
func FieldTypes() []string {
	types := make([]string, 0, len(defaultFieldRegistry))
	for t := range defaultFieldRegistry {
		types = append(types, t)
	}
	return types
}

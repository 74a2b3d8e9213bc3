package domain

// CreditType identifies the loan variant. The set is closed: behavior that
// depends on the variant switches on this tag.
type CreditType string

const (
	CreditTypePersonal   CreditType = "PERSONNEL"
	CreditTypeRealEstate CreditType = "IMMOBILIER"
	CreditTypeBusiness   CreditType = "PROFESSIONNEL"
)

// IsValid reports whether t is one of the known credit types.
func (t CreditType) IsValid() bool {
	switch t {
	case CreditTypePersonal, CreditTypeRealEstate, CreditTypeBusiness:
		return true
	}
	return false
}

// CreditStatus is the lifecycle state of a credit.
// EN_COURS is the initial state; ACCEPTE and REJETE are terminal.
type CreditStatus string

const (
	StatusInProgress CreditStatus = "EN_COURS"
	StatusAccepted   CreditStatus = "ACCEPTE"
	StatusRejected   CreditStatus = "REJETE"
)

// IsValid reports whether s is one of the known statuses.
func (s CreditStatus) IsValid() bool {
	switch s {
	case StatusInProgress, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsActive reports whether the credit counts toward a client's active
// credit load (eligibility rule).
func (s CreditStatus) IsActive() bool {
	return s == StatusInProgress || s == StatusAccepted
}

// PropertyType is the kind of property financed by a real-estate credit.
type PropertyType string

const (
	PropertyApartment  PropertyType = "APPARTEMENT"
	PropertyHouse      PropertyType = "MAISON"
	PropertyLand       PropertyType = "TERRAIN"
	PropertyCommercial PropertyType = "LOCAL_COMMERCIAL"
)

// IsValid reports whether p is one of the known property types.
func (p PropertyType) IsValid() bool {
	switch p {
	case PropertyApartment, PropertyHouse, PropertyLand, PropertyCommercial:
		return true
	}
	return false
}

// RepaymentType distinguishes scheduled installments from early payoffs.
type RepaymentType string

const (
	RepaymentInstallment RepaymentType = "MENSUALITE"
	RepaymentEarly       RepaymentType = "REMBOURSEMENT_ANTICIPE"
)

// IsValid reports whether t is one of the known repayment types.
func (t RepaymentType) IsValid() bool {
	return t == RepaymentInstallment || t == RepaymentEarly
}

// Business rule limits per credit variant.
const (
	PersonalAmountCap   = 100_000
	PersonalTermCapM    = 60
	RealEstateAmountCap = 1_000_000
	RealEstateTermCapM  = 300
	BusinessAmountCap   = 500_000
	BusinessTermCapM    = 120

	// MaxActiveCredits is the per-client cap checked by the eligibility rule.
	MaxActiveCredits = 3
)

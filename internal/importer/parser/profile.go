package parser

type amountMode int

const (
	// amountSigned: one column, negative values are outflows unless a kind
	// column says otherwise.
	amountSigned amountMode = iota
	// amountSplit: separate "Débit" and "Crédit" columns.
	amountSplit
)

// Profile describes the column layout of a supported export.
type Profile struct {
	Name        string
	DateCol     string
	LabelCol    string
	CategoryCol string // optional
	KindCol     string // optional
	AmountMode  amountMode
	AmountCol   string
	DebitCol    string
	CreditCol   string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; the most specific comes first.
var profiles = []Profile{
	{
		Name:        "registre",
		DateCol:     "date",
		LabelCol:    "libellé",
		CategoryCol: "catégorie",
		KindCol:     "type",
		AmountMode:  amountSigned,
		AmountCol:   "montant",
	},
	{
		Name:       "banque",
		DateCol:    "date",
		LabelCol:   "libellé",
		AmountMode: amountSplit,
		DebitCol:   "débit",
		CreditCol:  "crédit",
	},
}

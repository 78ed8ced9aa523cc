package domain

// Membership is a display-only tier label. Nothing in the service enforces the
// limits advertised for a tier.
type Membership string

const (
	MembershipFree    Membership = "Free"
	MembershipPlus    Membership = "Plus"
	MembershipAcademy Membership = "Academy"
	MembershipPro     Membership = "Pro"
)

// Account is the per-user record kept under the document's "users" map,
// keyed by email.
type Account struct {
	PasswordHash string     `json:"password_hash,omitempty"`
	Password     string     `json:"password,omitempty"` // legacy plaintext, removed on first login
	Membership   Membership `json:"membership"`
	CreatedAt    Timestamp  `json:"created_at"`
}

// User pairs an account with the email it is stored under.
type User struct {
	Email string
	Account
}

// Tier describes a membership plan as shown to players.
type Tier struct {
	Title     Membership `json:"title"`
	Price     string     `json:"price"`
	Perks     []string   `json:"perks"`
	Highlight bool       `json:"highlight"`
}

// Tiers lists the plans in display order.
var Tiers = []Tier{
	{
		Title: MembershipFree, Price: "£0 / month",
		Perks: []string{
			"1 AI analysed video / day",
			"Basic feedback library",
			"Save sessions & view history",
			"Download feedback as PDF",
		},
	},
	{
		Title: MembershipPlus, Price: "£7.99 / month",
		Perks: []string{
			"3 AI analysed videos / day",
			"Role-based coaching feedback",
			"Priority feedback engine",
			"Performance dashboard access",
		},
	},
	{
		Title: MembershipAcademy, Price: "£14.99 / month",
		Perks: []string{
			"10 AI analysed videos / day",
			"Position-specific insights",
			"Weak foot & body-shape breakdown",
			"Custom training suggestions",
			"Download PDFs & export summaries",
		},
		Highlight: true,
	},
	{
		Title: MembershipPro, Price: "£29.99 / month",
		Perks: []string{
			"Unlimited AI analysis",
			"Deep tactical & movement breakdown",
			"1-to-1 Private Coach mode (beta)",
			"Advanced analytics & badges",
			"Early access to new AI modules",
		},
	},
}

// ParseMembership returns the tier matching name, or false.
func ParseMembership(name string) (Membership, bool) {
	for _, t := range Tiers {
		if string(t.Title) == name {
			return t.Title, true
		}
	}
	return "", false
}

package leveling

// Recipient is the user an XP grant is for, resolved once at the gateway
// boundary. IsMember is false when the user could not be resolved to a guild
// member (they left, or the lookup failed); such users still earn XP but are
// never given roles.
type Recipient struct {
	UserId      string
	Username    string
	DisplayName string // nickname or global name, falls back to Username
	AvatarURL   string
	Color       int // member's display colour, 0 for none
	IsMember    bool
}

// Name is how the recipient is shown in announcements.
func (r Recipient) Name() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Username
}

// Mention is the Discord mention markup for the recipient.
func (r Recipient) Mention() string {
	return "<@" + r.UserId + ">"
}

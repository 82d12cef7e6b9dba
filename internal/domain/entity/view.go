package entity

import "time"

// UserView is the external representation of a user. It carries neither the
// password hash nor the verification token.
type UserView struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
	AcceptedTerms         bool       `json:"accepted_terms"`
	AcceptedPrivacyPolicy bool       `json:"accepted_privacy_policy"`
	SystemID              string     `json:"system_id"`
	RoleID                string     `json:"role_id,omitempty"`
	EmailVerified         bool       `json:"email_verified"`
}

// UserSummary is the terse view.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	SystemID  string    `json:"system_id"`
}

func (u *User) View() UserView {
	return UserView{
		ID:                    u.props.ID,
		Email:                 u.props.Email,
		Name:                  u.props.Name,
		CreatedAt:             u.props.CreatedAt,
		UpdatedAt:             u.props.UpdatedAt,
		AcceptedTerms:         u.props.AcceptedTerms,
		AcceptedPrivacyPolicy: u.props.AcceptedPrivacyPolicy,
		SystemID:              u.props.SystemID,
		RoleID:                u.props.RoleID,
		EmailVerified:         u.props.EmailVerified,
	}
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.props.ID,
		Email:     u.props.Email,
		Name:      u.props.Name,
		CreatedAt: u.props.CreatedAt,
		SystemID:  u.props.SystemID,
	}
}

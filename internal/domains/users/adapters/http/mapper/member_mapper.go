package mapper

import (
	"time"

	petmapper "github.com/Apurer/pet-community/internal/domains/pets/adapters/http/mapper"
	petdomain "github.com/Apurer/pet-community/internal/domains/pets/domain"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
)

// Member is the public directory entry of a user. Credentials and contact
// details are never exposed.
type Member struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	FullName    string          `json:"fullName"`
	PhotoURL    string          `json:"photoUrl,omitempty"`
	MemberSince *time.Time      `json:"memberSince,omitempty"`
	Pets        []petmapper.Pet `json:"pets"`
}

// FromDomainUser converts a domain user and their pets into a directory entry.
func FromDomainUser(user *userdomain.User, pets []*petdomain.Pet) Member {
	if user == nil {
		return Member{Pets: []petmapper.Pet{}}
	}
	member := Member{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		PhotoURL: petmapper.PhotoURL(user.ProfilePhotoRef),
		Pets:     petmapper.FromDomainPets(pets),
	}
	if !user.CreatedAt.IsZero() {
		since := user.CreatedAt.UTC()
		member.MemberSince = &since
	}
	return member
}

// FromDomainUsers builds directory entries, attaching each member's pets.
func FromDomainUsers(users []*userdomain.User, petsByOwner map[int64][]*petdomain.Pet) []Member {
	result := make([]Member, 0, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		result = append(result, FromDomainUser(user, petsByOwner[user.ID]))
	}
	return result
}

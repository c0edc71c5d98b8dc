package mapper

import petdomain "github.com/Apurer/pet-community/internal/domains/pets/domain"

// Pet is the transport-level pet payload.
type Pet struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"ownerId"`
	Name     string `json:"name"`
	Breed    string `json:"breed"`
	Age      int    `json:"age"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// PhotoURL turns a stored reference into the path it is served under.
func PhotoURL(ref string) string {
	if ref == "" {
		return ""
	}
	return "/" + ref
}

// FromDomainPet converts a domain pet into its transport representation.
func FromDomainPet(pet *petdomain.Pet) Pet {
	if pet == nil {
		return Pet{}
	}
	return Pet{
		ID:       pet.ID,
		OwnerID:  pet.OwnerID,
		Name:     pet.Name,
		Breed:    pet.Breed,
		Age:      pet.Age,
		PhotoURL: PhotoURL(pet.PhotoRef),
	}
}

// FromDomainPets converts a slice of domain pets.
func FromDomainPets(pets []*petdomain.Pet) []Pet {
	result := make([]Pet, 0, len(pets))
	for _, pet := range pets {
		if pet != nil {
			result = append(result, FromDomainPet(pet))
		}
	}
	return result
}

// GroupByOwner indexes pets by their owner, keeping list order.
func GroupByOwner(pets []*petdomain.Pet) map[int64][]*petdomain.Pet {
	grouped := make(map[int64][]*petdomain.Pet)
	for _, pet := range pets {
		if pet != nil {
			grouped[pet.OwnerID] = append(grouped[pet.OwnerID], pet)
		}
	}
	return grouped
}

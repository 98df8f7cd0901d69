package storage

import "hekayaty-backend/internal/model"

// Seed data applied at startup. The genre list is fixed reference data;
// the admin account is the single bootstrap login.
const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@hekayaty.com"
	SeedAdminPassword = "admin123"
)

func strptr(s string) *string { return &s }

// DefaultGenres returns the catalog's fixed genre list.
func DefaultGenres() []model.NewGenre {
	return []model.NewGenre{
		{Name: "Fantasy", Description: strptr("Magical worlds and epic quests"), Icon: strptr("wand-sparkles")},
		{Name: "Romance", Description: strptr("Love stories and relationships"), Icon: strptr("heart")},
		{Name: "Mystery", Description: strptr("Puzzles, crimes and secrets"), Icon: strptr("search")},
		{Name: "Science Fiction", Description: strptr("Futuristic and speculative tales"), Icon: strptr("rocket")},
		{Name: "Horror", Description: strptr("Fear, dread and the supernatural"), Icon: strptr("ghost")},
		{Name: "Adventure", Description: strptr("Journeys and daring exploits"), Icon: strptr("compass")},
	}
}

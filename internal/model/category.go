package model

// Category keys offered when creating or editing a project
const (
	CategoryEducation            = "education"
	CategoryEnvironment          = "environment"
	CategoryHealthWellness       = "health_wellness"
	CategorySocialServices       = "social_services"
	CategoryAnimalWelfare        = "animal_welfare"
	CategoryArtsCulture          = "arts_culture"
	CategoryCommunityDevelopment = "community_development"
	CategoryElderlyCare          = "elderly_care"
	CategoryYouthPrograms        = "youth_programs"
	CategoryHumanRights          = "human_rights"
)

// Category is a selectable project category
type Category struct {
	Key   string
	Label string
}

var categories = []Category{
	{CategoryEducation, "Education"},
	{CategoryEnvironment, "Environment"},
	{CategoryHealthWellness, "Health & Wellness"},
	{CategorySocialServices, "Social Services"},
	{CategoryAnimalWelfare, "Animal Welfare"},
	{CategoryArtsCulture, "Arts & Culture"},
	{CategoryCommunityDevelopment, "Community Development"},
	{CategoryElderlyCare, "Elderly Care"},
	{CategoryYouthPrograms, "Youth Programs"},
	{CategoryHumanRights, "Human Rights"},
}

// Categories returns the fixed category list in display order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsKnownCategory reports whether key is one of the fixed categories
func IsKnownCategory(key string) bool {
	for _, c := range categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// CategoryLabel returns the display label for key, or key itself if unknown
func CategoryLabel(key string) string {
	for _, c := range categories {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

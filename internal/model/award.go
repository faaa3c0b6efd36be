package model

// Document locations for the star rewards card.
const (
	AwardsCollection = "starRewards"
	AwardsDocument   = "awardList"
	AwardsField      = "rewards"

	ScoresCollection = "points"
	ScoresDocument   = "scores"
)

// Award is a reward tier unlocked at a star threshold. Stars is unique
// within an award list.
type Award struct {
	Stars  int    `firestore:"stars" json:"stars"`
	Reward string `firestore:"reward" json:"reward"`
}

// AwardList is the single document holding every tier for the household.
type AwardList struct {
	Rewards []Award `firestore:"rewards" json:"rewards"`
}

// ScoreBoard maps member name to star count. It is maintained outside the
// dashboard and only read here.
type ScoreBoard map[string]int

// DefaultAwards seeds the award document the first time it is observed
// missing.
func DefaultAwards() []Award {
	return []Award{
		{Stars: 10, Reward: "Extra candy for dessert"},
		{Stars: 25, Reward: "Choose the movie for movie night"},
		{Stars: 50, Reward: "Stay up an extra 30 minutes"},
		{Stars: 75, Reward: "Pick a family game"},
		{Stars: 100, Reward: "Starbucks cakepop treat"},
		{Stars: 200, Reward: "A fun family outing!"},
	}
}

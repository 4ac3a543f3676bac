package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Lisa", "Daniel", "Nancy",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Dorothy", "Paul", "Kimberly", "Andrew", "Emily", "Joshua", "Donna",
	"Kenneth", "Michelle", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa",
	"Timothy", "Deborah", "Ronald", "Stephanie", "Edward", "Rebecca", "Jason", "Sharon",
	"Jeffrey", "Laura", "Ryan", "Cynthia", "Jacob", "Kathleen", "Gary", "Amy",
	"Nicholas", "Angela", "Eric", "Shirley", "Jonathan", "Anna", "Stephen", "Brenda",
	"Larry", "Pamela", "Justin", "Emma", "Scott", "Nicole", "Brandon", "Helen",
	"Benjamin", "Samantha", "Samuel", "Katherine", "Raymond", "Christine", "Gregory", "Debra",
	"Frank", "Rachel", "Alexander", "Carolyn", "Patrick", "Janet", "Jack", "Catherine",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill",
	"Flores", "Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell",
	"Mitchell", "Carter", "Roberts", "Gomez", "Phillips", "Evans", "Turner", "Diaz",
	"Parker", "Cruz", "Edwards", "Collins", "Reyes", "Stewart", "Morris", "Morales",
}

var emailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "protonmail.com",
	"icloud.com", "mail.com", "fastmail.com", "example.com", "example.org",
}

var streetNames = []string{
	"Oak", "Maple", "Cedar", "Pine", "Elm", "Willow", "Birch", "Walnut", "Chestnut",
	"Lake", "Hill", "Park", "River", "Sunset", "Highland", "Meadow", "Forest", "Spring",
	"Church", "Mill", "Main", "Washington", "Lincoln", "Jefferson", "Franklin", "Madison",
}

var streetSuffixes = []string{"St", "Ave", "Rd", "Blvd", "Ln", "Dr", "Ct", "Way", "Pl", "Ter"}

var cities = []string{
	"Springfield", "Riverside", "Franklin", "Greenville", "Bristol", "Clinton", "Fairview",
	"Salem", "Madison", "Georgetown", "Arlington", "Ashland", "Dover", "Oxford", "Jackson",
	"Milton", "Newport", "Burlington", "Manchester", "Kingston", "Lexington", "Auburn",
}

var states = []string{
	"AL", "AZ", "CA", "CO", "CT", "FL", "GA", "IL", "IN", "KY", "MA", "MD", "MI", "MN",
	"MO", "NC", "NJ", "NY", "OH", "OR", "PA", "SC", "TN", "TX", "VA", "WA", "WI",
}

var productAdjectives = []string{
	"Classic", "Compact", "Deluxe", "Essential", "Premium", "Smart", "Ultra", "Eco",
	"Pro", "Vintage", "Modern", "Portable", "Wireless", "Organic", "Rustic", "Sleek",
	"Everyday", "Heavy-Duty", "Mini", "Signature",
}

// productNouns holds the second word of a product name per category.
var productNouns = map[string][]string{
	"Electronics": {"Headphones", "Speaker", "Charger", "Monitor", "Keyboard", "Camera", "Router", "Tablet"},
	"Home":        {"Lamp", "Blanket", "Vase", "Kettle", "Cushion", "Organizer", "Clock", "Rug"},
	"Books":       {"Novel", "Cookbook", "Atlas", "Journal", "Anthology", "Guide", "Memoir", "Almanac"},
	"Toys":        {"Puzzle", "Robot", "Kite", "Blocks", "Plush", "Racer", "Drone", "Board Game"},
	"Clothing":    {"Jacket", "Sweater", "Scarf", "Hoodie", "Jeans", "Sneakers", "Cap", "Shirt"},
	"Sports":      {"Yoga Mat", "Dumbbell", "Racket", "Bottle", "Helmet", "Backpack", "Ball", "Gloves"},
	"Beauty":      {"Serum", "Lotion", "Perfume", "Lipstick", "Cleanser", "Palette", "Shampoo", "Balm"},
}

var reviewWords = []string{
	"great", "quality", "arrived", "quickly", "and", "works", "as", "described", "the",
	"packaging", "was", "solid", "would", "buy", "again", "price", "fair", "for", "what",
	"you", "get", "not", "quite", "expected", "size", "fits", "well", "color", "looks",
	"nice", "daily", "use", "recommend", "friends", "family", "shipping", "slow", "but",
	"product", "excellent", "value", "sturdy", "lightweight", "easy", "setup", "instructions",
	"clear", "battery", "lasts", "long", "material", "feels", "cheap", "premium", "comfortable",
}

// faker draws synthetic values from one deterministic stream. Not safe for
// concurrent use; each table owns its own.
type faker struct {
	r *rand.Rand
}

func newFaker(seed int64) *faker {
	return &faker{r: rand.New(rand.NewSource(seed))}
}

func (f *faker) pick(pool []string) string { return pool[f.r.Intn(len(pool))] }

// weighted returns an index into weights with probability proportional to
// its weight.
func (f *faker) weighted(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	x := f.r.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func (f *faker) name() (first, last string) {
	return f.pick(firstNames), f.pick(lastNames)
}

func (f *faker) email(first, last string, rowID int) string {
	return fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), rowID, f.pick(emailDomains))
}

func (f *faker) phone() string {
	return fmt.Sprintf("(%03d) %03d-%04d", 201+f.r.Intn(789), 200+f.r.Intn(800), f.r.Intn(10000))
}

func (f *faker) address() string {
	return fmt.Sprintf("%d %s %s, %s, %s %05d",
		1+f.r.Intn(9999), f.pick(streetNames), f.pick(streetSuffixes),
		f.pick(cities), f.pick(states), 1000+f.r.Intn(99000))
}

func (f *faker) productName(category string) string {
	return f.pick(productAdjectives) + " " + f.pick(productNouns[category])
}

// sentence joins n words from pool, capitalised, with a trailing period.
func (f *faker) sentence(pool []string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = f.pick(pool)
	}
	s := strings.Join(words, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// lognormal draws exp(N(mu, sigma)).
func (f *faker) lognormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*f.r.NormFloat64())
}

// between returns a second-resolution time uniformly in [from, to).
func (f *faker) between(from, to time.Time) time.Time {
	span := int64(to.Sub(from) / time.Second)
	return from.Add(time.Duration(f.r.Int63n(span)) * time.Second)
}

// seasonal is between with month-of-year weighting, by rejection against
// the heaviest month.
func (f *faker) seasonal(from, to time.Time, monthWeights [12]float64) time.Time {
	var heaviest float64
	for _, w := range monthWeights {
		heaviest = math.Max(heaviest, w)
	}
	for {
		t := f.between(from, to)
		if f.r.Float64()*heaviest < monthWeights[t.Month()-1] {
			return t
		}
	}
}

// distinct returns k distinct ids from 1..n in draw order. k must not
// exceed n.
func (f *faker) distinct(n, k int) []int {
	out := make([]int, 0, k)
	seen := make(map[int]bool, k)
	for len(out) < k {
		id := 1 + f.r.Intn(n)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package sim

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// SentinelTeam always submits at least one correct answer with a high score,
// so a round's leaderboard is never empty even with no real traffic.
const SentinelTeam = "0THING2LOSE"

// teamNames is the pool of simulated competitors: past contest teams plus
// well-known AI labs for flavor.
var teamNames = []string{
	SentinelTeam, "UIT@Dzeus", "TKU.TonNGoYsss", "UTE AI LAB", "UIT-SHAMROCK",
	"TKU@MBZUAI", "TKU@UNIVORN&WHEAT", "Althena", "Your answer",
	"float97", "KPT", "GALAXY-AI", "Lucifer",
	"FLameReavers", "OpenCubee_1", "OpenCubee2", "Nomial",
	"AIO - Neural Weavers", "5bros", "AeThanhHoa", "AIO_Trinh",
	"Google DeepMind", "OpenAI", "Anthropic", "Meta AI", "Microsoft Research",
	"NVIDIA Research", "xAI", "Mistral AI", "Cohere", "Stability AI",
	"Hugging Face", "Tesla AI", "Amazon AGI", "Apple MLR", "Baidu AI",
}

// Generator draws fake-team behavior from fixed probability distributions.
// All draws share one seeded source; methods are safe for concurrent use.
type Generator struct {
	// DelayFloor is the minimum initial submit delay. Tests shrink it so
	// short rounds don't wait half a second per team.
	DelayFloor time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded for reproducible draws.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		DelayFloor: 500 * time.Millisecond,
		rnd:        rand.New(rand.NewSource(seed)),
	}
}

// TeamNames returns up to count unique names from the pool. When count covers
// the whole pool the full list is returned in order; otherwise a random
// sample is drawn.
func (g *Generator) TeamNames(count int) []string {
	if count <= 0 {
		return nil
	}
	if count >= len(teamNames) {
		out := make([]string, len(teamNames))
		copy(out, teamNames)
		return out
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	perm := g.rnd.Perm(len(teamNames))
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = teamNames[perm[i]]
	}
	return out
}

// Attempts draws how a team behaves during a round:
//
//	15%  no submission at all             (0, 0)
//	then, among submitting teams:
//	60%  correct on the first try         (0, 1)
//	25%  one wrong, then correct          (1, 1)
//	10%  2-3 wrong, then correct          (2-3, 1)
//	 5%  only wrong attempts              (1-3, 0)
func (g *Generator) Attempts() (wrong, correct int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rnd.Float64() >= 0.85 {
		return 0, 0
	}

	switch r := g.rnd.Float64(); {
	case r < 0.60:
		return 0, 1
	case r < 0.85:
		return 1, 1
	case r < 0.95:
		return 2 + g.rnd.Intn(2), 1
	default:
		return 1 + g.rnd.Intn(3), 0
	}
}

// WeightedScore draws a final score from four bands:
// 80-100 at 10%, 60-80 at 30%, 40-60 at 35%, 0-40 at 25%.
func (g *Generator) WeightedScore() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch r := g.rnd.Float64(); {
	case r < 0.10:
		return round1(80 + g.rnd.Float64()*20)
	case r < 0.40:
		return round1(60 + g.rnd.Float64()*20)
	case r < 0.75:
		return round1(40 + g.rnd.Float64()*20)
	default:
		return round1(g.rnd.Float64() * 40)
	}
}

// SentinelScore draws from the tight high band reserved for the sentinel team.
func (g *Generator) SentinelScore() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return round1(90 + g.rnd.Float64()*9)
}

// SubmitDelay draws the initial delay before a team's first attempt, scaled
// to the round's time limit so simulated activity spreads across the round
// and lands before it closes: uniform in [max(floor, 2%), 60%] of the limit.
func (g *Generator) SubmitDelay(timeLimit time.Duration) time.Duration {
	if timeLimit <= 0 {
		return time.Second
	}

	min := timeLimit / 50
	if min < g.DelayFloor {
		min = g.DelayFloor
	}
	max := timeLimit * 6 / 10
	if max < min {
		max = min
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return min + time.Duration(g.rnd.Int63n(int64(max-min)+1))
}

// Pause draws the gap between consecutive attempts, uniform in [min, max].
func (g *Generator) Pause(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + time.Duration(g.rnd.Int63n(int64(max-min)+1))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Package datafactory builds request payloads for the facility API tests.
//
// A Generator is created once per test run and owns all of its state (counter, clock reading,
// random source), so tests do not depend on each other's ordering through hidden globals.
package datafactory

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	random "github.com/mazen160/go-random"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

const (
	minFloors = 1
	maxFloors = 20
	runTagLen = 8
)

var realisticSiteNames = []string{
	"Central Hospital", "City Medical Center", "Regional Clinic",
	"University Hospital", "Private Medical Center", "Community Health Center",
	"Emergency Hospital", "Pediatric Clinic", "Surgical Center", "Rehabilitation Center",
}

var realisticLocations = []string{
	"Istanbul, Turkey", "Ankara, Turkey", "Izmir, Turkey",
	"Bursa, Turkey", "Antalya, Turkey", "Adana, Turkey",
	"Gaziantep, Turkey", "Konya, Turkey", "Mersin, Turkey", "Diyarbakır, Turkey",
}

type Generator struct {
	counter   int
	startedAt time.Time
	runTag    string
	rndm      *rand.Rand
	lock      sync.Mutex
}

// New returns a Generator whose random choices are determined by seed. The run tag is
// random regardless of the seed, since its only purpose is uniqueness across runs.
func New(seed int64) *Generator {
	rndm := rand.New(rand.NewSource(seed))
	tag, err := random.String(runTagLen)
	if err != nil {
		tag = randomLowercase(rndm, runTagLen)
	}
	return &Generator{
		counter:   1,
		startedAt: time.Now(),
		runTag:    strings.ToLower(tag),
		rndm:      rndm,
	}
}

func (g *Generator) RunTag() string {
	return g.runTag
}

func (g *Generator) StartedAt() time.Time {
	return g.startedAt
}

// next returns the current counter value and advances it.
func (g *Generator) next() (current, following int) {
	g.lock.Lock()
	defer g.lock.Unlock()
	current = g.counter
	g.counter++
	return current, g.counter
}

func (g *Generator) intn(n int) int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.rndm.Intn(n)
}

// Site returns "Test Site <n>" at "Test Location <n+1>"; any non-empty field of overrides
// replaces the generated value.
func (g *Generator) Site(overrides servicedef.CreateSiteRequest) servicedef.CreateSiteRequest {
	n, following := g.next()
	out := servicedef.CreateSiteRequest{
		Name:     fmt.Sprintf("Test Site %d", n),
		Location: fmt.Sprintf("Test Location %d", following),
	}
	mustMerge(&out, overrides)
	return out
}

// UniqueSite is like Site but the name also carries the run tag, so it does not collide with
// sites left behind by earlier runs against the same server.
func (g *Generator) UniqueSite() servicedef.CreateSiteRequest {
	n, following := g.next()
	return servicedef.CreateSiteRequest{
		Name:     fmt.Sprintf("Test Site %s-%d", g.runTag, n),
		Location: fmt.Sprintf("Test Location %d", following),
	}
}

// Building returns "Test Building <n>" in the given site with 1 to 20 floors.
func (g *Generator) Building(siteID string, overrides servicedef.CreateBuildingRequest) servicedef.CreateBuildingRequest {
	n, _ := g.next()
	floors := minFloors + g.intn(maxFloors-minFloors+1)
	out := servicedef.CreateBuildingRequest{
		SiteID: siteID,
		Name:   fmt.Sprintf("Test Building %d", n),
		Floors: &floors,
	}
	mustMerge(&out, overrides)
	return out
}

// Level returns "Test Level <n>" at the given index. Index is not subject to overrides
// because zero is a meaningful value for it.
func (g *Generator) Level(buildingID string, index int, overrides servicedef.CreateLevelRequest) servicedef.CreateLevelRequest {
	n, _ := g.next()
	out := servicedef.CreateLevelRequest{
		BuildingID: buildingID,
		Name:       fmt.Sprintf("Test Level %d", n),
	}
	mustMerge(&out, overrides)
	out.Index = index
	return out
}

// Levels returns count levels for a batch import, with indexes 1 through count.
func (g *Generator) Levels(buildingID string, count int) servicedef.CreateLevelsRequest {
	out := servicedef.CreateLevelsRequest{Items: make([]servicedef.CreateLevelRequest, 0, count)}
	for i := 1; i <= count; i++ {
		out.Items = append(out.Items, g.Level(buildingID, i, servicedef.CreateLevelRequest{}))
	}
	return out
}

// EdgeCaseSites returns boundary-style inputs that the API is expected to accept.
func (g *Generator) EdgeCaseSites() []servicedef.CreateSiteRequest {
	return []servicedef.CreateSiteRequest{
		{Name: "A", Location: "B"},
		{Name: "Site with spaces", Location: "Location with spaces"},
		{Name: "Site-With-Dashes", Location: "Location-With-Dashes"},
		{Name: "Site_With_Underscores", Location: "Location_With_Underscores"},
		{Name: "Site123", Location: "Location123"},
		{Name: "Site with Special Chars", Location: "Location with Special Chars"},
		{Name: "UPPERCASE SITE", Location: "UPPERCASE LOCATION"},
		{Name: "lowercase site", Location: "lowercase location"},
		{Name: "MiXeD cAsE sItE", Location: "MiXeD cAsE lOcAtIoN"},
		{Name: "İstanbul Şehir Hastanesi", Location: "Başakşehir, İstanbul"},
	}
}

// RealisticSite picks a name and a location uniformly at random from fixed lists.
func (g *Generator) RealisticSite() servicedef.CreateSiteRequest {
	return servicedef.CreateSiteRequest{
		Name:     realisticSiteNames[g.intn(len(realisticSiteNames))],
		Location: realisticLocations[g.intn(len(realisticLocations))],
	}
}

// mergo only fails on mismatched kinds, which cannot happen with same-typed arguments.
func mustMerge[T any](dst *T, overrides T) {
	if err := mergo.Merge(dst, overrides, mergo.WithOverride); err != nil {
		panic(err)
	}
}

func randomLowercase(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range str {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

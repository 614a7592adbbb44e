package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cascade-router/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadStations(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "stations.csv", "id,qmax,storage_capacity\nANGLG,4.5,0.25\nANG,6,0\n")

	got, err := LoadStations(p, 1e6)
	require.NoError(t, err)
	assert.Equal(t, []model.Station{
		{ID: "ANGLG", MaxOutflow: 4.5, StorageCapacity: 250000},
		{ID: "ANG", MaxOutflow: 6},
	}, got)

	dup := writeFile(t, dir, "dup.csv", "id,qmax,storage_capacity\nA,1,0\nA,2,0\n")
	_, err = LoadStations(dup, 1)
	assert.True(t, model.IsConfigError(err))

	_, err = LoadStations(filepath.Join(dir, "nope.csv"), 1)
	assert.Error(t, err)
}

func TestLoadTopologyCSV(t *testing.T) {
	p := writeFile(t, t.TempDir(), "topology.csv",
		"station_id,upstream_id,link_kind,clip_station\n"+
			"CHJ,CHJLG,clipped,KIL\n"+
			"ANG,ANGLG,full,\n"+
			"SPL,ANGLG,spillage,\n")

	got, err := LoadTopology(p)
	require.NoError(t, err)
	assert.Equal(t, []model.Link{
		{Station: "CHJ", Upstream: "CHJLG", Kind: model.LinkClipped, ClipStation: "KIL"},
		{Station: "ANG", Upstream: "ANGLG", Kind: model.LinkFull},
		{Station: "SPL", Upstream: "ANGLG", Kind: model.LinkSpillage},
	}, got)
}

func TestLoadTopologyYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "topology.yaml", `
links:
  - {station: SIS, upstream: COR, kind: annual-mean}
  - {station: CHJ, upstream: CHJLG, kind: excess, clip_station: KIL}
`)
	got, err := LoadTopology(p)
	require.NoError(t, err)
	assert.Equal(t, []model.Link{
		{Station: "SIS", Upstream: "COR", Kind: model.LinkAnnualMean},
		{Station: "CHJ", Upstream: "CHJLG", Kind: model.LinkOverflow, ClipStation: "KIL"},
	}, got)

	bad := writeFile(t, t.TempDir(), "bad.yml", "links:\n  - {station: B, upstream: A, kind: siphon}\n")
	_, err = LoadTopology(bad)
	assert.True(t, model.IsConfigError(err))
}

func TestLoadInflows(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "inflows.csv", "station_id,year,week,value\nSIS,2021,1,12.5\nSIS,2021,2,13\n")
	got, err := LoadInflows(p)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SIS", got[1].Station)
	assert.Equal(t, 2, got[1].Week)
	assert.Equal(t, 13.0, got[1].Value)

	neg := writeFile(t, dir, "neg.csv", "station_id,year,week,value\nSIS,2021,1,-1\n")
	_, err = LoadInflows(neg)
	assert.True(t, model.IsIntegrityError(err))
}

func TestResultCache(t *testing.T) {
	c := NewResultCache[string](time.Hour, time.Hour)
	defer c.Close()

	id := c.Put("run")
	assert.Len(t, id, 36)
	v, ok := c.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "run", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestResultCacheExpiry(t *testing.T) {
	c := NewResultCache[int](time.Millisecond, time.Hour)
	defer c.Close()

	c.Set("k", 1)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.evictExpired(time.Now())
	assert.Equal(t, 0, c.Len())

	var nilCache *ResultCache[int]
	_, ok = nilCache.Get("k")
	assert.False(t, ok)
}

func TestCacheTTLFromEnv(t *testing.T) {
	t.Setenv("RESULT_CACHE_TTL", "90s")
	assert.Equal(t, 90*time.Second, CacheTTLFromEnv())
	t.Setenv("RESULT_CACHE_TTL", "soon")
	assert.Equal(t, DefaultCacheTTL, CacheTTLFromEnv())
}

func TestListDatasets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "stations.csv", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data.yaml"), 0o755))

	list, err := ListDatasets(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), list[1].Path)

	d, err := FindDataset(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", d.Name)
	_, err = FindDataset(dir, "c")
	assert.Error(t, err)
}

package graphql_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tokligence/moviegraph/internal/catalog"
	"github.com/tokligence/moviegraph/internal/catalog/sqlite"
	"github.com/tokligence/moviegraph/internal/graphql"
)

// setupTestServer creates a GraphQL test server over a fresh SQLite catalog.
func setupTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "movies.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return serve(t, store), store
}

func serve(t *testing.T, store catalog.Store) *httptest.Server {
	t.Helper()
	handler, err := graphql.NewHandler(store, log.New(io.Discard), 0)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// graphQLRequest makes a GraphQL request and returns the decoded response.
func graphQLRequest(t *testing.T, server *httptest.Server, query string, variables map[string]interface{}) map[string]interface{} {
	t.Helper()

	body := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}
	bodyBytes, _ := json.Marshal(body)

	resp, err := http.Post(server.URL, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

// mustData fails the test on GraphQL errors and returns the data object.
func mustData(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()
	if errs, ok := result["errors"]; ok {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	return result["data"].(map[string]interface{})
}

func firstErrorCode(t *testing.T, result map[string]interface{}) string {
	t.Helper()
	errs, ok := result["errors"].([]interface{})
	if !ok || len(errs) == 0 {
		t.Fatalf("expected errors, got %v", result)
	}
	ext, _ := errs[0].(map[string]interface{})["extensions"].(map[string]interface{})
	code, _ := ext["code"].(string)
	return code
}

const createActorMutation = `
	mutation CreateActor($input: ActorInput!) {
		createActor(input: $input) {
			ok
			actor { id name }
		}
	}
`

const createMovieMutation = `
	mutation CreateMovie($input: MovieInput!) {
		createMovie(input: $input) {
			ok
			movie { id title year actors { id name } }
		}
	}
`

const updateMovieMutation = `
	mutation UpdateMovie($id: Int!, $input: MovieInput!) {
		updateMovie(id: $id, input: $input) {
			ok
			movie { id title year actors { id } }
		}
	}
`

const movieQuery = `
	query Movie($id: Int) {
		movie(id: $id) { id title year actors { id name } }
	}
`

func createActor(t *testing.T, server *httptest.Server, name string) string {
	t.Helper()
	data := mustData(t, graphQLRequest(t, server, createActorMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": name},
	}))
	payload := data["createActor"].(map[string]interface{})
	if payload["ok"] != true {
		t.Fatalf("createActor not ok: %v", payload)
	}
	return payload["actor"].(map[string]interface{})["id"].(string)
}

func actorRefs(ids ...string) []interface{} {
	refs := make([]interface{}, len(ids))
	for i, id := range ids {
		refs[i] = map[string]interface{}{"id": id}
	}
	return refs
}

func idsOf(t *testing.T, list interface{}) []string {
	t.Helper()
	items, ok := list.([]interface{})
	if !ok {
		t.Fatalf("expected list, got %T", list)
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.(map[string]interface{})["id"].(string)
	}
	sort.Strings(ids)
	return ids
}

func equalIDs(a, b []string) bool {
	sort.Strings(a)
	sort.Strings(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ==============================================================================
// Tests
// ==============================================================================

func TestCreateAndGetActor(t *testing.T) {
	server, _ := setupTestServer(t)

	id := createActor(t, server, "Keanu Reeves")

	result := graphQLRequest(t, server, `query Actor($id: Int) { actor(id: $id) { id name } }`,
		map[string]interface{}{"id": mustInt(t, id)})
	actor := mustData(t, result)["actor"].(map[string]interface{})
	if actor["name"] != "Keanu Reeves" {
		t.Errorf("Expected 'Keanu Reeves', got %v", actor["name"])
	}
	if actor["id"] != id {
		t.Errorf("Expected id %s, got %v", id, actor["id"])
	}
}

func TestActorWithoutIDIsNull(t *testing.T) {
	server, _ := setupTestServer(t)
	data := mustData(t, graphQLRequest(t, server, `{ actor { id } movie { id } }`, nil))
	if data["actor"] != nil || data["movie"] != nil {
		t.Fatalf("expected null results, got %v", data)
	}
}

func TestListActorsReturnsAllOnce(t *testing.T) {
	server, _ := setupTestServer(t)
	want := []string{
		createActor(t, server, "Al Pacino"),
		createActor(t, server, "Marlon Brando"),
		createActor(t, server, "Robert Duvall"),
	}

	data := mustData(t, graphQLRequest(t, server, `{ actors { id name } }`, nil))
	got := idsOf(t, data["actors"])
	if !equalIDs(got, want) {
		t.Fatalf("expected actors %v, got %v", want, got)
	}
}

func TestCreateMovieWithUnknownActor(t *testing.T) {
	server, store := setupTestServer(t)
	a1 := createActor(t, server, "Keanu Reeves")

	result := graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"title":  "M",
			"year":   2000,
			"actors": actorRefs(a1, "99999"),
		},
	})
	payload := mustData(t, result)["createMovie"].(map[string]interface{})
	if payload["ok"] != false {
		t.Errorf("expected ok=false, got %v", payload["ok"])
	}
	if payload["movie"] != nil {
		t.Errorf("expected movie=null, got %v", payload["movie"])
	}

	movies, err := store.ListMovies(context.Background())
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected no persisted movie, got %+v", movies)
	}
}

func TestCreateMovieWithMalformedActorRef(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, ref := range []interface{}{
		map[string]interface{}{"id": "not-a-number"},
		map[string]interface{}{"name": "no id"},
		nil,
	} {
		result := graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
			"input": map[string]interface{}{"title": "M", "year": 2000, "actors": []interface{}{ref}},
		})
		payload := mustData(t, result)["createMovie"].(map[string]interface{})
		if payload["ok"] != false || payload["movie"] != nil {
			t.Errorf("ref %v: expected ok=false movie=null, got %v", ref, payload)
		}
	}
}

func TestCreateMovieAndReadBack(t *testing.T) {
	server, _ := setupTestServer(t)
	a1 := createActor(t, server, "Carrie-Anne Moss")
	a2 := createActor(t, server, "Laurence Fishburne")

	result := graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"title":  "M",
			"year":   2000,
			"actors": actorRefs(a1, a2),
		},
	})
	payload := mustData(t, result)["createMovie"].(map[string]interface{})
	if payload["ok"] != true {
		t.Fatalf("expected ok=true, got %v", payload)
	}
	movieID := payload["movie"].(map[string]interface{})["id"].(string)

	movie := mustData(t, graphQLRequest(t, server, movieQuery, map[string]interface{}{"id": mustInt(t, movieID)}))["movie"].(map[string]interface{})
	if movie["title"] != "M" || movie["year"] != float64(2000) {
		t.Errorf("unexpected movie %v", movie)
	}
	if got := idsOf(t, movie["actors"]); !equalIDs(got, []string{a1, a2}) {
		t.Errorf("expected actors {%s, %s}, got %v", a1, a2, got)
	}

	// Reverse relation.
	actor := mustData(t, graphQLRequest(t, server, `query A($id: Int) { actor(id: $id) { movies { id } } }`,
		map[string]interface{}{"id": mustInt(t, a1)}))["actor"].(map[string]interface{})
	if got := idsOf(t, actor["movies"]); !equalIDs(got, []string{movieID}) {
		t.Errorf("expected actor movies [%s], got %v", movieID, got)
	}
}

func TestUpdateMovieUnknownActorLeavesMovieUnchanged(t *testing.T) {
	server, _ := setupTestServer(t)
	a1 := createActor(t, server, "Mark Hamill")
	created := mustData(t, graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
		"input": map[string]interface{}{"title": "Star Wars", "year": 1977, "actors": actorRefs(a1)},
	}))["createMovie"].(map[string]interface{})
	movieID := created["movie"].(map[string]interface{})["id"].(string)

	result := graphQLRequest(t, server, updateMovieMutation, map[string]interface{}{
		"id": mustInt(t, movieID),
		"input": map[string]interface{}{
			"title":  "Changed",
			"year":   2020,
			"actors": actorRefs("424242"),
		},
	})
	payload := mustData(t, result)["updateMovie"].(map[string]interface{})
	if payload["ok"] != false || payload["movie"] != nil {
		t.Fatalf("expected ok=false movie=null, got %v", payload)
	}

	movie := mustData(t, graphQLRequest(t, server, movieQuery, map[string]interface{}{"id": mustInt(t, movieID)}))["movie"].(map[string]interface{})
	if movie["title"] != "Star Wars" || movie["year"] != float64(1977) {
		t.Errorf("movie fields changed: %v", movie)
	}
	if got := idsOf(t, movie["actors"]); !equalIDs(got, []string{a1}) {
		t.Errorf("actor set changed: %v", got)
	}
}

func TestUpdateMovieReplacesActorSet(t *testing.T) {
	server, _ := setupTestServer(t)
	a1 := createActor(t, server, "Harrison Ford")
	a2 := createActor(t, server, "Carrie Fisher")
	a3 := createActor(t, server, "Alec Guinness")
	created := mustData(t, graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
		"input": map[string]interface{}{"title": "Star Wars", "year": 1977, "actors": actorRefs(a1, a2)},
	}))["createMovie"].(map[string]interface{})
	movieID := created["movie"].(map[string]interface{})["id"].(string)

	result := graphQLRequest(t, server, updateMovieMutation, map[string]interface{}{
		"id":    mustInt(t, movieID),
		"input": map[string]interface{}{"title": "T2", "year": 2020, "actors": actorRefs(a3)},
	})
	payload := mustData(t, result)["updateMovie"].(map[string]interface{})
	if payload["ok"] != true {
		t.Fatalf("expected ok=true, got %v", payload)
	}
	movie := payload["movie"].(map[string]interface{})
	if movie["title"] != "T2" || movie["year"] != float64(2020) {
		t.Errorf("unexpected movie %v", movie)
	}
	if got := idsOf(t, movie["actors"]); !equalIDs(got, []string{a3}) {
		t.Errorf("expected actor set [%s], got %v", a3, got)
	}
}

func TestUpdateMissingMovieAndActor(t *testing.T) {
	server, _ := setupTestServer(t)

	movieResult := graphQLRequest(t, server, updateMovieMutation, map[string]interface{}{
		"id":    5000,
		"input": map[string]interface{}{"title": "Ghost", "year": 1990},
	})
	movie := mustData(t, movieResult)["updateMovie"].(map[string]interface{})
	if movie["ok"] != false || movie["movie"] != nil {
		t.Errorf("expected ok=false movie=null, got %v", movie)
	}

	actorResult := graphQLRequest(t, server, `
		mutation { updateActor(id: 5000, input: {name: "Nobody"}) { ok actor { id } } }
	`, nil)
	actor := mustData(t, actorResult)["updateActor"].(map[string]interface{})
	if actor["ok"] != false || actor["actor"] != nil {
		t.Errorf("expected ok=false actor=null, got %v", actor)
	}
}

func TestUpdateActor(t *testing.T) {
	server, _ := setupTestServer(t)
	id := createActor(t, server, "Jon Voight")

	result := graphQLRequest(t, server, `
		mutation U($id: Int!, $input: ActorInput!) { updateActor(id: $id, input: $input) { ok actor { id name } } }
	`, map[string]interface{}{"id": mustInt(t, id), "input": map[string]interface{}{"name": "Jon Voight Sr."}})
	payload := mustData(t, result)["updateActor"].(map[string]interface{})
	if payload["ok"] != true {
		t.Fatalf("expected ok=true, got %v", payload)
	}
	if name := payload["actor"].(map[string]interface{})["name"]; name != "Jon Voight Sr." {
		t.Errorf("unexpected name %v", name)
	}
}

func TestMovieNotFound(t *testing.T) {
	server, _ := setupTestServer(t)
	result := graphQLRequest(t, server, movieQuery, map[string]interface{}{"id": 777})
	if code := firstErrorCode(t, result); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %q (%v)", code, result)
	}
	if data, ok := result["data"].(map[string]interface{}); ok && data["movie"] != nil {
		t.Fatalf("expected movie=null, got %v", data["movie"])
	}
}

func TestActorNotFound(t *testing.T) {
	server, _ := setupTestServer(t)
	result := graphQLRequest(t, server, `query A($id: Int) { actor(id: $id) { id name } }`, map[string]interface{}{"id": 999})
	if code := firstErrorCode(t, result); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %q (%v)", code, result)
	}
	if data, ok := result["data"].(map[string]interface{}); ok && data["actor"] != nil {
		t.Fatalf("expected actor=null, got %v", data["actor"])
	}
}

func TestDuplicateActorRefsCollapse(t *testing.T) {
	server, _ := setupTestServer(t)
	a1 := createActor(t, server, "Uma Thurman")
	a2 := createActor(t, server, "John Travolta")

	result := graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
		"input": map[string]interface{}{"title": "Pulp Fiction", "year": 1994, "actors": actorRefs(a1, a1, a2)},
	})
	payload := mustData(t, result)["createMovie"].(map[string]interface{})
	if payload["ok"] != true {
		t.Fatalf("expected ok=true, got %v", payload)
	}
	got := idsOf(t, payload["movie"].(map[string]interface{})["actors"])
	if !equalIDs(got, []string{a1, a2}) {
		t.Errorf("expected actors {%s, %s} once each, got %v", a1, a2, got)
	}
}

func TestUpdateMovieWithoutActorsClearsCast(t *testing.T) {
	server, _ := setupTestServer(t)
	a1 := createActor(t, server, "Peter Weller")

	for _, input := range []map[string]interface{}{
		{"title": "RoboCop", "year": 1987},
		{"title": "RoboCop", "year": 1987, "actors": nil},
	} {
		created := mustData(t, graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
			"input": map[string]interface{}{"title": "RoboCop", "year": 1987, "actors": actorRefs(a1)},
		}))["createMovie"].(map[string]interface{})
		movieID := created["movie"].(map[string]interface{})["id"].(string)

		result := graphQLRequest(t, server, updateMovieMutation, map[string]interface{}{
			"id":    mustInt(t, movieID),
			"input": input,
		})
		payload := mustData(t, result)["updateMovie"].(map[string]interface{})
		if payload["ok"] != true {
			t.Fatalf("input %v: expected ok=true, got %v", input, payload)
		}
		if got := idsOf(t, payload["movie"].(map[string]interface{})["actors"]); len(got) != 0 {
			t.Errorf("input %v: expected empty cast, got %v", input, got)
		}
	}
}

func TestCreateMovieWithManyUnknownActors(t *testing.T) {
	server, _ := setupTestServer(t)
	ids := make([]string, 40000)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	result := graphQLRequest(t, server, createMovieMutation, map[string]interface{}{
		"input": map[string]interface{}{"title": "Crowd Scene", "year": 2001, "actors": actorRefs(ids...)},
	})
	payload := mustData(t, result)["createMovie"].(map[string]interface{})
	if payload["ok"] != false || payload["movie"] != nil {
		t.Fatalf("expected ok=false movie=null, got %v", payload)
	}
}

func TestDeprecatedCreateCtor(t *testing.T) {
	server, _ := setupTestServer(t)
	result := graphQLRequest(t, server, `mutation { createCtor(input: {name: "Typo"}) { ok actor { name } } }`, nil)
	payload := mustData(t, result)["createCtor"].(map[string]interface{})
	if payload["ok"] != true || payload["actor"].(map[string]interface{})["name"] != "Typo" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

// failingStore reports a storage failure for every call.
type failingStore struct {
	catalog.Store
}

var errDiskGone = errors.New("disk gone")

func (failingStore) CreateActor(context.Context, string) (*catalog.Actor, error) {
	return nil, errDiskGone
}

func (failingStore) ListMovies(context.Context) ([]catalog.Movie, error) {
	return nil, errDiskGone
}

func TestStorageErrorsPropagate(t *testing.T) {
	server := serve(t, failingStore{})

	result := graphQLRequest(t, server, `mutation { createActor(input: {name: "X"}) { ok } }`, nil)
	if code := firstErrorCode(t, result); code != "STORAGE_ERROR" {
		t.Fatalf("expected STORAGE_ERROR, got %q", code)
	}

	result = graphQLRequest(t, server, `{ movies { id } }`, nil)
	if code := firstErrorCode(t, result); code != "STORAGE_ERROR" {
		t.Fatalf("expected STORAGE_ERROR, got %q", code)
	}
	msg := result["errors"].([]interface{})[0].(map[string]interface{})["message"].(string)
	if strings.Contains(msg, "disk gone") {
		t.Fatalf("storage detail leaked to client: %q", msg)
	}
}

func TestValidateAndPrintSchema(t *testing.T) {
	schema, err := graphql.ValidateSchema()
	if err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	for _, name := range []string{"actor", "movie", "actors", "movies"} {
		if schema.Query.Fields.ForName(name) == nil {
			t.Errorf("query field %q missing", name)
		}
	}
	for _, name := range []string{"createActor", "updateActor", "createMovie", "updateMovie"} {
		if schema.Mutation.Fields.ForName(name) == nil {
			t.Errorf("mutation field %q missing", name)
		}
	}
	printed, err := graphql.PrintSchema()
	if err != nil {
		t.Fatalf("PrintSchema: %v", err)
	}
	if !strings.Contains(printed, "type Movie") {
		t.Fatalf("printed schema missing Movie type:\n%s", printed)
	}
}

func mustInt(t *testing.T, id string) int {
	t.Helper()
	n, err := strconv.Atoi(id)
	if err != nil {
		t.Fatalf("non-numeric id %q: %v", id, err)
	}
	return n
}

package model

import "github.com/mrdrprofuroboros/constellation/internal/graph"

// Edge labels. Each relationship instance carries exactly one of these.
const (
	RelFriends      = "FRIENDS"
	RelCreated      = "CREATED"
	RelListens      = "LISTENS"
	RelIncludes     = "INCLUDES"
	RelComesFrom    = "COMES_FROM"
	RelInfluencedOn = "INFLUENCED_ON"
	RelBelongsTo    = "BELONGS_TO"
	RelRelatedWith  = "RELATED_WITH"
	RelComposed     = "COMPOSED"
	RelRecorded     = "RECORDED"
	RelRecordedOn   = "RECORDED_ON"
	RelParticipated = "PARTICIPATED"
	RelAggregates   = "AGGREGATES"
)

// Entity type schemas. Role flags on Artist and release-kind flags on
// Release are non-exclusive boolean tags, not labels: an Artist may be both
// performer and composer.
var (
	User = &Schema{
		Label:    "User",
		Identity: "username",
		Fields:   []string{"username", "password", "email"},
	}

	Artist = &Schema{
		Label:  "Artist",
		Fields: []string{"name", "born", "died", "performer", "composer", "producer", "collective"},
	}

	Genre = &Schema{
		Label:  "Genre",
		Fields: []string{"name"},
	}

	Epoch = &Schema{
		Label:  "Epoch",
		Fields: []string{"name", "started", "ended"},
	}

	Release = &Schema{
		Label:  "Release",
		Fields: []string{"name", "date", "label", "album", "ep", "single", "live", "compilation"},
	}

	ReleaseGroup = &Schema{
		Label:  "ReleaseGroup",
		Fields: []string{"name", "date"},
	}

	Composition = &Schema{
		Label:  "Composition",
		Fields: []string{"name", "started", "finished"},
	}

	Track = &Schema{
		Label:  "Track",
		Fields: []string{"name", "year"},
	}

	Playlist = &Schema{
		Label:  "Playlist",
		Fields: []string{"name"},
	}
)

// Relationship fields are attached after all schema vars exist; several
// relationships are self-referential or mutually referential.
func init() {
	User.Rels = map[string]Rel{
		"friends":   {Label: RelFriends, Dir: graph.Any, Target: User},
		"playlists": {Label: RelCreated, Dir: graph.Outgoing, Target: Playlist},
		"artists":   {Label: RelListens, Dir: graph.Outgoing, Target: Artist},
		"releases":  {Label: RelListens, Dir: graph.Outgoing, Target: Release},
	}

	Artist.Rels = map[string]Rel{
		"relatedWith":   {Label: RelRelatedWith, Dir: graph.Any, Target: Artist},
		"compositions":  {Label: RelComposed, Dir: graph.Outgoing, Target: Composition},
		"tracks":        {Label: RelRecorded, Dir: graph.Outgoing, Target: Track},
		"releaseGroups": {Label: RelParticipated, Dir: graph.Outgoing, Target: ReleaseGroup},
		"listeners":     {Label: RelListens, Dir: graph.Incoming, Target: User},
	}

	Genre.Rels = map[string]Rel{
		"ancestors":    {Label: RelComesFrom, Dir: graph.Outgoing, Target: Genre},
		"descendants":  {Label: RelInfluencedOn, Dir: graph.Outgoing, Target: Genre},
		"compositions": {Label: RelBelongsTo, Dir: graph.Incoming, Target: Composition},
		"releases":     {Label: RelBelongsTo, Dir: graph.Incoming, Target: Release},
		"epochs":       {Label: RelBelongsTo, Dir: graph.Outgoing, Target: Epoch},
	}

	Epoch.Rels = map[string]Rel{
		"ancestors":   {Label: RelComesFrom, Dir: graph.Outgoing, Target: Epoch},
		"descendants": {Label: RelInfluencedOn, Dir: graph.Outgoing, Target: Epoch},
		"genres":      {Label: RelBelongsTo, Dir: graph.Incoming, Target: Genre},
	}

	Release.Rels = map[string]Rel{
		"listeners":  {Label: RelListens, Dir: graph.Incoming, Target: User},
		"genres":     {Label: RelBelongsTo, Dir: graph.Outgoing, Target: Genre},
		"tracks":     {Label: RelIncludes, Dir: graph.Outgoing, Target: Track},
		"aggregates": {Label: RelAggregates, Dir: graph.Outgoing, Target: Release},
		"groups":     {Label: RelAggregates, Dir: graph.Incoming, Target: ReleaseGroup},
	}

	ReleaseGroup.Rels = map[string]Rel{
		"releases":     {Label: RelAggregates, Dir: graph.Outgoing, Target: Release},
		"participants": {Label: RelParticipated, Dir: graph.Incoming, Target: Artist},
	}

	Composition.Rels = map[string]Rel{
		"composers":  {Label: RelComposed, Dir: graph.Incoming, Target: Artist},
		"genres":     {Label: RelBelongsTo, Dir: graph.Outgoing, Target: Genre},
		"tracks":     {Label: RelRecordedOn, Dir: graph.Outgoing, Target: Track},
		"aggregates": {Label: RelAggregates, Dir: graph.Outgoing, Target: Composition},
	}

	Track.Rels = map[string]Rel{
		"playlists":    {Label: RelIncludes, Dir: graph.Incoming, Target: Playlist},
		"releases":     {Label: RelIncludes, Dir: graph.Incoming, Target: Release},
		"performers":   {Label: RelRecorded, Dir: graph.Incoming, Target: Artist},
		"compositions": {Label: RelRecordedOn, Dir: graph.Incoming, Target: Composition},
		"aggregates":   {Label: RelAggregates, Dir: graph.Outgoing, Target: Track},
	}

	Playlist.Rels = map[string]Rel{
		"creators": {Label: RelCreated, Dir: graph.Incoming, Target: User},
		"tracks":   {Label: RelIncludes, Dir: graph.Outgoing, Target: Track},
	}
}

// Schemas returns every declared entity schema.
func Schemas() []*Schema {
	return []*Schema{User, Artist, Genre, Epoch, Release, ReleaseGroup, Composition, Track, Playlist}
}

// Labels returns every node label, for store constraint setup.
func Labels() []string {
	schemas := Schemas()
	labels := make([]string, len(schemas))
	for i, s := range schemas {
		labels[i] = s.Label
	}
	return labels
}

// NewUser builds an unpersisted User. The password must already be a digest;
// the model layer never stores plaintext.
func NewUser(username, passwordDigest, email string) (*Entity, error) {
	values := map[string]any{
		"username": username,
		"password": passwordDigest,
	}
	if email != "" {
		values["email"] = email
	}
	return User.New(values)
}

// NewPlaylist builds an unpersisted Playlist.
func NewPlaylist(name string) (*Entity, error) {
	return Playlist.New(map[string]any{"name": name})
}

// NewTrack builds an unpersisted Track.
func NewTrack(name string, year int) (*Entity, error) {
	return Track.New(map[string]any{"name": name, "year": year})
}

// NewGenre builds an unpersisted Genre.
func NewGenre(name string) (*Entity, error) {
	return Genre.New(map[string]any{"name": name})
}

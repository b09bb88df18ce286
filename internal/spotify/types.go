package spotify

// Profile is the signed-in user's public profile.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"image,omitempty"`
}

// Track is a catalog track.
type Track struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artist     string   `json:"artist"` // primary artist
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	ArtworkURL string   `json:"image,omitempty"`
	URL        string   `json:"url,omitempty"`
}

// Artist is a catalog artist.
type Artist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Genres   []string `json:"genres"`
	ImageURL string   `json:"image,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Playlist is a playlist owned or followed by the user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"image,omitempty"`
	TrackCount  int    `json:"trackCount"`
	Owner       string `json:"owner,omitempty"`
}

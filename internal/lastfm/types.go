package lastfm

// tag is a Last.fm tag. Count is only present for some methods.
type tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// artistTagsResponse is the JSON response for artist.getTopTags.
type artistTagsResponse struct {
	TopTags struct {
		Tag  []tag `json:"tag"`
		Attr struct {
			Artist string `json:"artist"`
		} `json:"@attr"`
	} `json:"toptags"`
}

// apiError is a Last.fm error body. Last.fm reports errors with HTTP 200.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

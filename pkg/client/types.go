package client

// Character is a single row of the characters table.
type Character struct {
	Name     string `json:"name"`
	Species  string `json:"species"`
	ImageURL string `json:"image"`
}

// CharacterPage is one page of the characters listing as returned upstream.
type CharacterPage struct {
	Items      []Character `json:"items"`
	TotalCount int         `json:"total_count"`
	TotalPages int         `json:"total_pages"`

	// Next and Prev are the neighbouring page numbers, nil at the edges.
	Next *int `json:"next,omitempty"`
	Prev *int `json:"prev,omitempty"`
}

// IsEmpty reports whether the page carries no characters.
func (p *CharacterPage) IsEmpty() bool {
	return p == nil || len(p.Items) == 0
}

// GetCharactersQuery is the only operation issued against the upstream.
const GetCharactersQuery = `query GetCharacters($page: Int) {
  characters(page: $page) {
    info {
      count
      pages
      next
      prev
    }
    results {
      name
      species
      image
    }
  }
}`

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type charactersResponse struct {
	Data struct {
		Characters *struct {
			Info struct {
				Count int  `json:"count"`
				Pages int  `json:"pages"`
				Next  *int `json:"next"`
				Prev  *int `json:"prev"`
			} `json:"info"`
			Results []Character `json:"results"`
		} `json:"characters"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// toPage converts the wire shape into a CharacterPage. A null characters
// field yields an empty page.
func (r *charactersResponse) toPage() *CharacterPage {
	page := &CharacterPage{Items: []Character{}}
	chars := r.Data.Characters
	if chars == nil {
		return page
	}
	page.TotalCount = chars.Info.Count
	page.TotalPages = chars.Info.Pages
	page.Next = chars.Info.Next
	page.Prev = chars.Info.Prev
	if chars.Results != nil {
		page.Items = chars.Results
	}
	return page
}

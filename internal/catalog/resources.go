package catalog

import "sort"

// ResourceKind groups resources in the library.
type ResourceKind string

const (
	KindBook    ResourceKind = "book"
	KindArticle ResourceKind = "article"
	KindVideo   ResourceKind = "video"
	KindLink    ResourceKind = "link"
)

// AllResourceKinds returns the kinds in display order.
func AllResourceKinds() []ResourceKind {
	return []ResourceKind{KindBook, KindArticle, KindVideo, KindLink}
}

// Label returns the learner-facing kind name.
func (k ResourceKind) Label() string {
	switch k {
	case KindBook:
		return "Livro"
	case KindArticle:
		return "Artigo"
	case KindVideo:
		return "Vídeo"
	case KindLink:
		return "Link"
	default:
		return string(k)
	}
}

// Resource is an entry of the learning library.
type Resource struct {
	ID          string       `json:"id"`
	Kind        ResourceKind `json:"kind"`
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	Venue       string       `json:"venue,omitempty"`
	Level       string       `json:"level,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	Category    string       `json:"category,omitempty"`
	Description string       `json:"description"`
	URL         string       `json:"url,omitempty"`
}

// ResourcesByKind returns the resources of kind k, in catalog order. An
// empty kind returns every resource.
func (c *Catalog) ResourcesByKind(k ResourceKind) []Resource {
	out := []Resource{}
	for _, r := range c.Resources {
		if k == "" || r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// Resource returns the resource with the given id.
func (c *Catalog) Resource(id string) (Resource, bool) {
	for _, r := range c.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// LinkCategories returns the distinct categories of link resources, sorted.
func (c *Catalog) LinkCategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.Resources {
		if r.Kind == KindLink && r.Category != "" && !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultResources returns the built-in library.
func DefaultResources() []Resource {
	rs := []Resource{
		{Kind: KindBook, Title: "Weapons of Math Destruction", Author: "Cathy O'Neil", Level: "Intermediário",
			Description: "Como algoritmos aumentam a desigualdade e ameaçam a democracia",
			URL:         "https://www.amazon.com.br/dp/0553418815"},
		{Kind: KindBook, Title: "Algorithms of Oppression", Author: "Safiya Umoja Noble", Level: "Avançado",
			Description: "Como os mecanismos de busca reforçam o racismo",
			URL:         "https://nyupress.org/9781479837243/algorithms-of-oppression/"},
		{Kind: KindBook, Title: "Race After Technology", Author: "Ruha Benjamin", Level: "Intermediário",
			Description: "Ferramentas abolitivas para a era digital",
			URL:         "https://www.ruhabenjamin.com/race-after-technology"},
		{Kind: KindBook, Title: "The Ethical Algorithm", Author: "Kearns & Roth", Level: "Avançado",
			Description: "A ciência de design de algoritmo socialmente consciente",
			URL:         "https://global.oup.com/academic/product/the-ethical-algorithm-9780190948207"},
		{Kind: KindArticle, Title: "Fairness and Abstraction in Sociotechnical Systems", Author: "Selbst et al.",
			Venue:       "FAT* 2019",
			Description: "Análise dos desafios de implementar equidade em sistemas sociotécnicos"},
		{Kind: KindArticle, Title: "Gender Shades: Intersectional Accuracy Disparities", Author: "Joy Buolamwini & Timnit Gebru",
			Venue:       "FAT* 2018",
			Description: "Estudo sobre vieses em sistemas de reconhecimento facial"},
		{Kind: KindVideo, Title: "Como ensinar algoritmos a serem justos", Author: "TED Talk - Joy Buolamwini",
			Duration: "9 min", Level: "Básico",
			Description: "Discussão sobre vieses em reconhecimento facial",
			URL:         "https://youtube.com/watch?v=UG_X_7g63rY"},
		{Kind: KindVideo, Title: "Os perigos dos algoritmos invisíveis", Author: "TED Talk - Cathy O'Neil",
			Duration: "13 min", Level: "Intermediário",
			Description: "Como algoritmos podem perpetuar desigualdades",
			URL:         "https://youtube.com/watch?v=heQzqX35c9A"},
		{Kind: KindVideo, Title: "Inteligência Artificial e Preconceito", Author: "Computerphile",
			Duration: "15 min", Level: "Avançado",
			Description: "Explicação técnica sobre vieses em IA",
			URL:         "https://youtube.com/watch?v=59bMh59JQDo"},
		{Kind: KindLink, Title: "AI Fairness 360", Category: "Ferramenta",
			Description: "Toolkit da IBM para detectar e mitigar vieses em ML",
			URL:         "https://aif360.mybluemix.net/"},
		{Kind: KindLink, Title: "Fairlearn", Category: "Ferramenta",
			Description: "Biblioteca Python para avaliação e melhoria de equidade",
			URL:         "https://fairlearn.org/"},
		{Kind: KindLink, Title: "Partnership on AI", Category: "Organização",
			Description: "Organização focada em IA responsável",
			URL:         "https://partnershiponai.org/"},
		{Kind: KindLink, Title: "AI Ethics Lab", Category: "Educacional",
			Description: "Recursos sobre ética em inteligência artificial",
			URL:         "https://aiethicslab.com/"},
		{Kind: KindLink, Title: "Algorithmic Justice League", Category: "Organização",
			Description: "Organização combatendo vieses algorítmicos",
			URL:         "https://www.ajl.org/"},
	}
	for i := range rs {
		rs[i].ID = Slug(rs[i].Title)
	}
	return rs
}

var resourceSchema = datafileSchema("resource", []string{"kind", "title", "description"}, map[string]any{
	"id":          str(),
	"kind":        map[string]any{"enum": []string{"book", "article", "video", "link"}},
	"title":       str(),
	"author":      map[string]any{"type": "string"},
	"venue":       map[string]any{"type": "string"},
	"level":       map[string]any{"type": "string"},
	"duration":    map[string]any{"type": "string"},
	"category":    map[string]any{"type": "string"},
	"description": str(),
	"url":         map[string]any{"type": "string"},
})

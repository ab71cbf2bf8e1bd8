package normalizeskills

type Input struct {
	Skills []string `json:"skills"`
}

type Output struct {
	Skills []string `json:"skills"`
	Count  int      `json:"count"`
}

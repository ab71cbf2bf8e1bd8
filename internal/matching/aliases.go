package matching

// DefaultAliases is the built-in skill vocabulary. Dotted variants are listed
// in both forms because list normalization turns "." into a space.
func DefaultAliases() AliasTable {
	return AliasTable{
		"javascript":       {"js", "es6", "ecmascript", "java script"},
		"typescript":       {"ts"},
		"react":            {"reactjs", "react.js", "react js"},
		"react native":     {"reactnative", "react-native"},
		"vue":              {"vuejs", "vue.js", "vue js"},
		"angular":          {"angularjs", "angular.js", "angular js"},
		"nextjs":           {"next.js", "next js"},
		"nodejs":           {"node", "node.js", "node js"},
		"express":          {"expressjs", "express.js", "express js"},
		"python":           {"py", "python3"},
		"go":               {"golang"},
		"java":             {"core java", "java8", "java 8"},
		"cpp":              {"c++"},
		"csharp":           {"c#", "c sharp"},
		"html":             {"html5"},
		"css":              {"css3"},
		"tailwind":         {"tailwindcss", "tailwind css"},
		"sql":              {"structured query language"},
		"postgresql":       {"postgres", "psql"},
		"mysql":            {"my sql"},
		"mongodb":          {"mongo", "mongo db"},
		"redis":            {"redis cache"},
		"docker":           {"containers", "containerization"},
		"kubernetes":       {"k8s", "kube"},
		"aws":              {"amazon web services"},
		"gcp":              {"google cloud", "google cloud platform"},
		"azure":            {"microsoft azure"},
		"git":              {"git scm", "version control"},
		"rest api":         {"rest", "restful", "rest apis", "restful api"},
		"graphql":          {"graph ql"},
		"machine learning": {"ml"},
		"deep learning":    {"dl"},
		"ai":               {"artificial intelligence"},
		"nlp":              {"natural language processing"},
		"computer vision":  {"opencv"},
		"tensorflow":       {"tf"},
		"pytorch":          {"torch"},
		"scikit-learn":     {"sklearn", "scikit learn"},
		"pandas":           {"pd"},
		"numpy":            {"np"},
		"data analysis":    {"data analytics", "data analyst"},
		"power bi":         {"powerbi"},
		"excel":            {"ms excel", "microsoft excel", "spreadsheets"},
		"figma":            {"figma design"},
		"ui/ux":            {"ui ux", "ux", "ui design", "ux design"},
		"communication":    {"communication skills", "verbal communication"},
		"linux":            {"unix"},
		"flutter":          {"dart flutter"},
		"django":           {"django rest framework", "drf"},
		"flask":            {"python flask"},
	}
}

// Merge returns a new table holding t's entries plus extra. Variants for the
// same canonical key are concatenated.
func (t AliasTable) Merge(extra AliasTable) AliasTable {
	out := make(AliasTable, len(t)+len(extra))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range extra {
		out[k] = append(out[k], v...)
	}
	return out
}

package llm

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// reviewSchema mirrors ReviewJSONSchema in OpenAPI form, where a nullable
// type is a flag rather than a type list.
var reviewSchema = func() *openapi3.Schema {
	severities := make([]interface{}, len(Severities))
	for i, s := range Severities {
		severities[i] = s
	}

	issue := openapi3.NewObjectSchema().
		WithProperty("severity", openapi3.NewStringSchema().WithEnum(severities...)).
		WithProperty("file", openapi3.NewStringSchema().WithNullable()).
		WithProperty("line", openapi3.NewIntegerSchema().WithNullable()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("detail", openapi3.NewStringSchema()).
		WithProperty("patch", openapi3.NewStringSchema().WithNullable())
	issue.Required = []string{"severity", "file", "line", "title", "detail", "patch"}

	review := openapi3.NewObjectSchema().
		WithProperty("summary", openapi3.NewStringSchema()).
		WithProperty("issues", openapi3.NewArraySchema().WithItems(issue))
	review.Required = []string{"summary", "issues"}
	return review
}()

// ValidateReview checks a decoded model response against the review schema.
func ValidateReview(result map[string]interface{}) error {
	return reviewSchema.VisitJSON(result, openapi3.MultiErrors())
}

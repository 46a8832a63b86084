package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const formContentType = "application/x-www-form-urlencoded"

func fieldSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema().WithEnum("text", "number", "date", "currency", "select", "datalist")).
		WithProperty("options", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())).
		WithProperty("required", openapi3.NewBoolSchema())
}

func fieldsSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("fields", openapi3.NewArraySchema().WithItems(fieldSchema()))
}

func statusSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema())
}

func operation(id, summary string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	return op
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema)
}

// buildRouteDocument describes the intake routes as an OpenAPI 3 document.
func buildRouteDocument(ctx context.Context) (*openapi3.T, error) {
	masterFields := operation("getMasterFields", "List the master field catalog")
	masterFields.AddResponse(http.StatusOK, jsonResponse("master fields", fieldsSchema()))

	assetTypes := operation("getAssetTypes", "List asset type names")
	assetTypes.AddResponse(http.StatusOK, jsonResponse("asset type names", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))

	fields := operation("getFields", "Fields of an asset type")
	fields.AddParameter(openapi3.NewPathParameter("type").WithSchema(openapi3.NewStringSchema()))
	fields.AddResponse(http.StatusOK, jsonResponse("fields of the type, empty when unknown", fieldsSchema()))

	createType := operation("createType", "Register an asset type")
	createType.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchema(openapi3.NewObjectSchema().
			WithProperty("type", openapi3.NewStringSchema()).
			WithProperty("fields", openapi3.NewArraySchema().WithItems(fieldSchema())))}
	createType.AddResponse(http.StatusOK, jsonResponse("type created", statusSchema()))
	createType.AddResponse(http.StatusBadRequest, jsonResponse("name or fields missing", statusSchema()))
	createType.AddResponse(http.StatusConflict, jsonResponse("type already exists", statusSchema()))

	form := operation("getForm", "Render the intake form")
	form.AddParameter(openapi3.NewQueryParameter("type").WithSchema(openapi3.NewStringSchema()))
	form.AddParameter(openapi3.NewQueryParameter("format").
		WithSchema(openapi3.NewStringSchema().WithEnum("html", "json")))
	formContent := openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/html"})
	formContent["application/json"] = openapi3.NewMediaType().WithSchema(openapi3.NewObjectSchema().
		WithProperty("session_id", openapi3.NewStringSchema()).
		WithProperty("category", openapi3.NewStringSchema()).
		WithProperty("submit_enabled", openapi3.NewBoolSchema()).
		WithProperty("controls", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())))
	form.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("rendered form").
		WithContent(formContent))
	form.AddResponse(http.StatusNotAcceptable, openapi3.NewResponse().WithDescription("unknown format"))

	editForm := operation("editForm", "Render the form of an existing record")
	editForm.AddParameter(openapi3.NewQueryParameter("format").
		WithSchema(openapi3.NewStringSchema().WithEnum("html", "json")))
	editForm.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchema(openapi3.NewObjectSchema().
			WithProperty("category", openapi3.NewStringSchema()).
			WithRequired([]string{"category"}))}
	editForm.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("pre-filled form").
		WithContent(formContent))
	editForm.AddResponse(http.StatusBadRequest, jsonResponse("record missing or category unknown", statusSchema()))
	editForm.AddResponse(http.StatusNotAcceptable, openapi3.NewResponse().WithDescription("unknown format"))

	createAsset := operation("createAsset", "Submit an asset")
	createAsset.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.NewContentWithSchema(openapi3.NewObjectSchema().
			WithProperty("category", openapi3.NewStringSchema()).
			WithProperty("new_type", openapi3.NewStringSchema()).
			WithProperty("selected_features", openapi3.NewStringSchema()).
			WithProperty("custom_fields", openapi3.NewStringSchema()), []string{formContentType}))}
	createAsset.AddResponse(http.StatusCreated, jsonResponse("normalized record", openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("record", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))))
	createAsset.AddResponse(http.StatusBadRequest, jsonResponse("invalid submission", statusSchema()))

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "dynform intake",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/get_master_fields", &openapi3.PathItem{Get: masterFields}),
			openapi3.WithPath("/get_asset_types", &openapi3.PathItem{Get: assetTypes}),
			openapi3.WithPath("/get_fields/{type}", &openapi3.PathItem{Get: fields}),
			openapi3.WithPath("/create_type", &openapi3.PathItem{Post: createType}),
			openapi3.WithPath("/form", &openapi3.PathItem{Get: form, Post: editForm}),
			openapi3.WithPath("/create_asset", &openapi3.PathItem{Post: createAsset}),
		),
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("server: invalid route document: %w", err)
	}
	return doc, nil
}

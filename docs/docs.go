// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/health": {
            "get": {"summary": "Liveness probe", "security": [], "responses": {"200": {"description": "OK"}}}
        },
        "/users/me": {
            "get": {"summary": "Current user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/subjects": {
            "get": {"summary": "List subjects", "responses": {"200": {"description": "OK"}}}
        },
        "/quiz/start": {
            "post": {
                "summary": "Start a quiz attempt",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/StartAttemptRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Block not found"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/quiz/take": {
            "get": {
                "summary": "Resume an attempt",
                "parameters": [{"in": "query", "name": "attemptId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/quiz/submit": {
            "post": {
                "summary": "Submit answers and score the attempt",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttemptRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}, "500": {"description": "failed to submit quiz"}}
            }
        },
        "/quiz/attempt": {
            "get": {
                "summary": "Attempt detail",
                "parameters": [{"in": "query", "name": "attemptId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/quiz/my-results": {
            "get": {
                "summary": "Completed attempts of the caller",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quiz/blocks": {
            "get": {
                "summary": "Active blocks",
                "parameters": [{"in": "query", "name": "subjectId", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/apply-cleanup-migration": {
            "post": {
                "summary": "One-time retention cleanup",
                "security": [],
                "parameters": [{"in": "query", "name": "token", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/admin/cleanup-old-attempts": {
            "get": {"summary": "Recurring retention cleanup", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        }
    },
    "definitions": {
        "StartAttemptRequest": {
            "type": "object",
            "required": ["mode"],
            "properties": {
                "mode": {"type": "string", "enum": ["RANDOM_30", "BLOCK"]},
                "blockId": {"type": "string"},
                "subjectId": {"type": "string"}
            }
        },
        "SubmittedAnswer": {
            "type": "object",
            "required": ["questionId"],
            "properties": {
                "questionId": {"type": "string"},
                "userAnswer": {"type": "string"},
                "timeSpent": {"type": "integer"}
            }
        },
        "SubmitAttemptRequest": {
            "type": "object",
            "required": ["attemptId"],
            "properties": {
                "attemptId": {"type": "string"},
                "answers": {"type": "array", "items": {"$ref": "#/definitions/SubmittedAnswer"}},
                "timeSpent": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sechenov+ Quiz API",
	Description:      "Quiz attempts, scoring and retention for Sechenov+.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

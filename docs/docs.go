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
    "paths": {
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for an access and refresh token",
                "parameters": [{"description": "Email and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Revoke a refresh token",
                "parameters": [{"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RefreshTokenRequest"}}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Rotate a refresh token",
                "parameters": [{"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RefreshTokenRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [{"description": "Email and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.TokenResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/itineraries/cluster": {
            "post": {
                "description": "Records keep every field they were sent with. Records without a usable latitude and longitude are left out.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Group geotagged records into days",
                "parameters": [{"description": "Records and number of days", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ClusterRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ClusterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/api/v1/quick-plan": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quick-plan"],
                "summary": "Plan a whole trip from a destination and a vibe",
                "description": "A trip whose detailed itinerary could not be built is still returned, with itinerary_error set.",
                "parameters": [{"description": "Destination, duration and vibe", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.QuickPlanRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.Error"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.Error"}}
                }
            }
        },
        "/api/v1/trips": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trips"],
                "summary": "List the caller's trips",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Error"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trips"],
                "summary": "Create a trip",
                "parameters": [{"description": "Trip context", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CreateTripRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trips"],
                "summary": "Get the full state of a trip",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["trips"],
                "summary": "Delete a trip",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/brainstorm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["brainstorm"],
                "summary": "Ask the assistant for activity suggestions",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true},
                    {"description": "Message", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.BrainstormRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/activities": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["activities"],
                "summary": "Add suggestions to the curated activity list",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Error"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["activities"],
                "summary": "Clear the curated activity list and its itineraries",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/v1/trips/{tripID}/activities/{activityID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["activities"],
                "summary": "Remove one curated activity",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true},
                    {"type": "string", "description": "Activity ID", "name": "activityID", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/geocode": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["activities"],
                "summary": "Geocode every curated activity",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/trips/{tripID}/itinerary/basic": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Split the located activities into days by geography",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/itinerary/detailed": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Generate a timed day by day itinerary",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.Error"}}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/itinerary/detailed/modify": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Apply a free text change to the detailed itinerary",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/itinerary/detailed/stops": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Append a pool activity to a day of the detailed itinerary",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/itinerary/detailed/days/{day}/stops/{index}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Remove a stop from the detailed itinerary",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true},
                    {"type": "integer", "description": "Day number", "name": "day", "in": "path", "required": true},
                    {"type": "integer", "description": "Stop position, starting at 0", "name": "index", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/itinerary/detailed/days/{day}/stops/{index}/move": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "Move a stop one place up or down within its day",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true},
                    {"type": "integer", "description": "Day number", "name": "day", "in": "path", "required": true},
                    {"type": "integer", "description": "Stop position, starting at 0", "name": "index", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.Error"}}}
            }
        },
        "/api/v1/trips/{tripID}/pool": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["itinerary"],
                "summary": "List located activities not yet in the detailed itinerary",
                "parameters": [{"type": "string", "description": "Trip ID", "name": "tripID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.RefreshTokenRequest": {
            "type": "object",
            "properties": {"refresh_token": {"type": "string"}}
        },
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.TokenResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "api.Error": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "types.BrainstormRequest": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "types.ClusterRequest": {
            "type": "object",
            "properties": {
                "num_days": {"type": "integer"},
                "records": {"type": "array", "items": {"type": "object", "additionalProperties": true}}
            }
        },
        "types.ClusterResponse": {
            "type": "object",
            "properties": {
                "requested_days": {"type": "integer"},
                "effective_days": {"type": "integer"},
                "days": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "object", "additionalProperties": true}}}
            }
        },
        "types.CreateTripRequest": {
            "type": "object",
            "properties": {
                "destination": {"type": "string"},
                "duration": {"type": "string"},
                "preferences": {"type": "array", "items": {"type": "string"}},
                "budget": {"type": "string"}
            }
        },
        "types.QuickPlanRequest": {
            "type": "object",
            "properties": {
                "destination": {"type": "string"},
                "duration": {"type": "string"},
                "vibe": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Trip Day Planner API",
	Description:      "Brainstorm activities, geocode them and turn them into day by day itineraries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

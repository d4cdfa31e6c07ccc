// Package docs registers the portal's OpenAPI document with swag so
// gin-swagger can serve it under /swagger/.
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
        "/auth/sign-up": {
            "post": {
                "tags": ["auth"],
                "summary": "Submit the sign-up form and send the verification e-mail",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SignUpForm"}}],
                "responses": {"200": {"description": "Flow view"}, "400": {"description": "Field errors or notice"}, "409": {"description": "Flow busy"}}
            }
        },
        "/auth/sign-up/resend": {
            "post": {"tags": ["auth"], "summary": "Resend the verification e-mail", "responses": {"200": {"description": "Flow view"}, "409": {"description": "Invalid transition"}}}
        },
        "/auth/sign-up/back": {
            "post": {"tags": ["auth"], "summary": "Return to the sign-up form", "responses": {"200": {"description": "Flow view"}}}
        },
        "/auth/sign-in": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in with e-mail and password",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SignInForm"}},
                    {"in": "query", "name": "redirect", "type": "string", "description": "Local path to return to"}
                ],
                "responses": {"200": {"description": "Flow view with redirect"}, "400": {"description": "Field errors or notice"}}
            }
        },
        "/auth/sign-in/resend": {
            "post": {"tags": ["auth"], "summary": "Resend the verification e-mail for an unverified account", "responses": {"200": {"description": "Flow view"}}}
        },
        "/auth/sign-in/back": {
            "post": {"tags": ["auth"], "summary": "Return to the sign-in form", "responses": {"200": {"description": "Flow view"}}}
        },
        "/auth/sign-in/social": {
            "post": {"tags": ["auth"], "summary": "Start social sign-in", "responses": {"200": {"description": "Flow view with provider redirect"}}}
        },
        "/auth/forgot-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Request a password reset link",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/EmailForm"}}],
                "responses": {"200": {"description": "Flow view"}, "400": {"description": "Field errors or notice"}}
            }
        },
        "/auth/forgot-password/resend": {
            "post": {"tags": ["auth"], "summary": "Resend the reset link", "responses": {"200": {"description": "Flow view"}}}
        },
        "/auth/forgot-password/back": {
            "post": {"tags": ["auth"], "summary": "Return to the forgot-password form", "responses": {"200": {"description": "Flow view"}}}
        },
        "/auth/reset-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Set a new password with the token from the reset link",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ResetPasswordForm"}}],
                "responses": {"200": {"description": "Flow view"}, "400": {"description": "Field errors or notice"}}
            }
        },
        "/auth/sign-out": {
            "post": {"tags": ["auth"], "summary": "Sign out and clear session cookies", "responses": {"200": {"description": "Redirect target"}}}
        },
        "/session": {
            "get": {"tags": ["auth"], "summary": "Current session with role", "responses": {"200": {"description": "Session"}, "401": {"description": "Not signed in"}}}
        },
        "/profile": {
            "get": {"tags": ["profile"], "summary": "Profile of the signed-in user", "responses": {"200": {"description": "Profile view"}, "401": {"description": "Not signed in"}}},
            "put": {"tags": ["profile"], "summary": "Update profile fields", "responses": {"200": {"description": "Profile view"}, "400": {"description": "Field errors"}}}
        },
        "/profile/image": {
            "put": {
                "tags": ["profile"],
                "summary": "Upload a profile image",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "image", "type": "file", "required": true}],
                "responses": {"200": {"description": "Image URL"}, "400": {"description": "Missing or invalid image"}}
            }
        },
        "/profile/password": {
            "get": {"tags": ["profile"], "summary": "Password panel state", "responses": {"200": {"description": "Flow view"}}}
        },
        "/profile/password/open": {
            "post": {"tags": ["profile"], "summary": "Open the password panel", "responses": {"200": {"description": "Flow view"}}}
        },
        "/profile/password/email": {
            "post": {"tags": ["profile"], "summary": "Send a reset code", "responses": {"200": {"description": "Flow view"}}}
        },
        "/profile/password/otp": {
            "post": {"tags": ["profile"], "summary": "Verify the reset code", "responses": {"200": {"description": "Flow view"}}}
        },
        "/profile/password/new-password": {
            "post": {"tags": ["profile"], "summary": "Set the new password", "responses": {"200": {"description": "Flow view"}}}
        },
        "/profile/password/back": {
            "post": {"tags": ["profile"], "summary": "Go back one step", "responses": {"200": {"description": "Flow view"}}}
        },
        "/admin/auth-events": {
            "get": {
                "tags": ["admin"],
                "summary": "Audit trail for one e-mail address",
                "parameters": [
                    {"in": "query", "name": "email", "type": "string", "required": true},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "Events"}, "403": {"description": "Insufficient permissions"}}
            }
        },
        "/hooks/email": {
            "post": {
                "tags": ["hooks"],
                "summary": "Dispatch a transactional e-mail for the auth service",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/EmailHook"}}],
                "responses": {"202": {"description": "Dispatched"}, "400": {"description": "Invalid purpose or URL"}, "502": {"description": "Send failed"}}
            }
        },
        "/hooks/auth-events": {
            "post": {
                "tags": ["hooks"],
                "summary": "Record an auth lifecycle event",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/AuthEventHook"}}],
                "responses": {"201": {"description": "Recorded"}, "400": {"description": "Invalid event"}}
            }
        }
    },
    "definitions": {
        "SignUpForm": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "SignInForm": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "EmailForm": {
            "type": "object",
            "properties": {"email": {"type": "string"}}
        },
        "ResetPasswordForm": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "EmailHook": {
            "type": "object",
            "properties": {
                "purpose": {"type": "string", "enum": ["email-verification", "forgot-password", "reset-password"]},
                "email": {"type": "string"},
                "url": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "AuthEventHook": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["email-verified", "password-reset"]},
                "email": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Auth Portal API",
	Description:      "Cookie-based front end for the auth service and backend API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

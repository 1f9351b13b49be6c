package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Records API",
        "description": "Academic records: accounts, courses, class sections, enrollment, coursework, attendance and announcements",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "securityDefinitions": {
        "Session": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Authentication", "description": "Session login with offline fallback"},
        {"name": "Users", "description": "Admin, teacher and student accounts"},
        {"name": "Catalog", "description": "Courses, semesters, classrooms and time slots"},
        {"name": "Sections", "description": "Class sections and weekly schedule"},
        {"name": "Enrollments", "description": "Seats in class sections"},
        {"name": "Coursework", "description": "Assignments, submissions and grading"},
        {"name": "Attendance", "description": "Roll calls per class meeting"},
        {"name": "Announcements", "description": "Institution and section notices"},
        {"name": "Exports", "description": "CSV and PDF downloads"}
    ],
    "paths": {
        "/health": {"get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}},
        "/ready": {"get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Store unreachable"}}}},
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "Session token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Rejected"}}
            }
        },
        "/api/v1/auth/logout": {"post": {"tags": ["Authentication"], "summary": "Log out", "security": [{"Session": []}], "responses": {"204": {"description": "Logged out"}}}},
        "/api/v1/auth/me": {"get": {"tags": ["Authentication"], "summary": "Current account", "security": [{"Session": []}], "responses": {"200": {"description": "Account"}}}},
        "/api/v1/users": {
            "get": {"tags": ["Users"], "summary": "List users", "security": [{"Session": []}], "responses": {"200": {"description": "Accounts"}}},
            "post": {"tags": ["Users"], "summary": "Create user", "security": [{"Session": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Username taken"}}}
        },
        "/api/v1/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get user", "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Account"}}},
            "put": {"tags": ["Users"], "summary": "Update user", "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Account"}}},
            "delete": {"tags": ["Users"], "summary": "Delete user", "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Still referenced"}}}
        },
        "/api/v1/courses": {
            "get": {"tags": ["Catalog"], "summary": "List courses", "security": [{"Session": []}], "responses": {"200": {"description": "Courses"}}},
            "post": {"tags": ["Catalog"], "summary": "Create course", "security": [{"Session": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/semesters/active": {"get": {"tags": ["Catalog"], "summary": "Current semester", "security": [{"Session": []}], "responses": {"200": {"description": "Semester"}, "404": {"description": "None active"}}}},
        "/api/v1/sections": {
            "get": {"tags": ["Sections"], "summary": "List class sections", "security": [{"Session": []}], "responses": {"200": {"description": "Sections"}}},
            "post": {"tags": ["Sections"], "summary": "Create class section with schedule", "security": [{"Session": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Classroom double-booked or teacher role mismatch"}}}
        },
        "/api/v1/sections/{id}/enrollments": {
            "get": {"tags": ["Enrollments"], "summary": "Students in a section", "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Enrollments"}}},
            "post": {"tags": ["Enrollments"], "summary": "Enroll", "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"201": {"description": "Enrolled"}, "409": {"description": "Already enrolled or section full"}}}
        },
        "/api/v1/sections/{id}/roster": {"get": {"tags": ["Exports"], "summary": "Roster download", "produces": ["text/csv", "application/pdf"], "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}], "responses": {"200": {"description": "File"}}}},
        "/api/v1/students/{id}/transcript": {"get": {"tags": ["Exports"], "summary": "Transcript download", "produces": ["text/csv", "application/pdf"], "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}], "responses": {"200": {"description": "File"}}}},
        "/api/v1/assignments/{id}/submissions": {
            "post": {"tags": ["Coursework"], "summary": "Hand in work", "consumes": ["multipart/form-data"], "security": [{"Session": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "formData", "name": "content", "type": "string"}, {"in": "formData", "name": "attachment", "type": "file"}], "responses": {"201": {"description": "Submitted"}, "403": {"description": "Not enrolled"}}}
        },
        "/api/v1/attendance": {"post": {"tags": ["Attendance"], "summary": "Take attendance", "security": [{"Session": []}], "responses": {"201": {"description": "Recorded"}}}},
        "/api/v1/announcements": {
            "get": {"tags": ["Announcements"], "summary": "Board for the current account", "security": [{"Session": []}], "responses": {"200": {"description": "Announcements"}}},
            "post": {"tags": ["Announcements"], "summary": "Post announcement", "security": [{"Session": []}], "responses": {"201": {"description": "Posted"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

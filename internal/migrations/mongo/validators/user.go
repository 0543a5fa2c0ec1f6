package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"email",
			"password_hash",
			"role",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"user", "admin"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

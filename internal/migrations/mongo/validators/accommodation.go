package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var AccommodationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"location",
			"available_rooms_by_date",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"Hotel", "Hostel", "Apartment", "Villa", "Guesthouse"},
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"available_rooms_by_date": bson.M{
				"bsonType": "object",
				"patternProperties": bson.M{
					`^\d{4}-\d{2}-\d{2}$`: bson.M{
						"bsonType": integer,
						"minimum":  0,
					},
				},
				"additionalProperties": false,
			},

			"version": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

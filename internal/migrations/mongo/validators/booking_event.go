package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"type",
			"booking_id",
			"accommodation_id",
			"occurred_at",
			"recorded_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"booking.created", "booking.amended", "booking.cancelled"},
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"accommodation_id": bson.M{
				"bsonType": "string",
			},

			"occurred_at": bson.M{
				"bsonType": "date",
			},

			"recorded_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

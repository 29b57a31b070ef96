// Package classifier answers whether a camera image contains a cat.
//
// HTTPClassifier posts the image to a prediction service and inspects the
// returned labels; FakeClassifier answers at random for demos.
package classifier

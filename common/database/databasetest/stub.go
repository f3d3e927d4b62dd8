// Package databasetest provides a programmable database.API for repository tests.
package databasetest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Stub records every call and delegates to the matching func field when set.
// Unset funcs return empty outputs.
type Stub struct {
	GetItemFn        func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	PutItemFn        func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	UpdateItemFn     func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	DeleteItemFn     func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	QueryFn          func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	BatchWriteItemFn func(*dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
	BatchGetItemFn   func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)

	mu          sync.Mutex
	Gets        []*dynamodb.GetItemInput
	Puts        []*dynamodb.PutItemInput
	Updates     []*dynamodb.UpdateItemInput
	Deletes     []*dynamodb.DeleteItemInput
	Queries     []*dynamodb.QueryInput
	BatchWrites []*dynamodb.BatchWriteItemInput
	BatchGets   []*dynamodb.BatchGetItemInput
}

func (s *Stub) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	s.mu.Lock()
	s.Gets = append(s.Gets, in)
	s.mu.Unlock()
	if s.GetItemFn != nil {
		return s.GetItemFn(in)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (s *Stub) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.mu.Lock()
	s.Puts = append(s.Puts, in)
	s.mu.Unlock()
	if s.PutItemFn != nil {
		return s.PutItemFn(in)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (s *Stub) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	s.mu.Lock()
	s.Updates = append(s.Updates, in)
	s.mu.Unlock()
	if s.UpdateItemFn != nil {
		return s.UpdateItemFn(in)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (s *Stub) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	s.mu.Lock()
	s.Deletes = append(s.Deletes, in)
	s.mu.Unlock()
	if s.DeleteItemFn != nil {
		return s.DeleteItemFn(in)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (s *Stub) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	s.mu.Lock()
	s.Queries = append(s.Queries, in)
	s.mu.Unlock()
	if s.QueryFn != nil {
		return s.QueryFn(in)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (s *Stub) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	s.mu.Lock()
	s.BatchWrites = append(s.BatchWrites, in)
	s.mu.Unlock()
	if s.BatchWriteItemFn != nil {
		return s.BatchWriteItemFn(in)
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (s *Stub) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	s.mu.Lock()
	s.BatchGets = append(s.BatchGets, in)
	s.mu.Unlock()
	if s.BatchGetItemFn != nil {
		return s.BatchGetItemFn(in)
	}
	return &dynamodb.BatchGetItemOutput{}, nil
}
